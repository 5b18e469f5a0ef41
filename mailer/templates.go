package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
)

const logoFileName = "static/logo.png"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<!doctype html>
<html lang="en">
<head><meta charset="UTF-8"><title>Confirm your E-Mail</title></head>
<body style="margin:0; padding:0; background:#ffffff;">
  <table width="650" style="font-family:Geist, system-ui, sans-serif;">
    <tr><td style="padding:18px 24px; background:#fefbf1;">
      <img src="{{.LogoLink}}" alt="Bitcredit" width="120" height="24">
    </td></tr>
    <tr><td style="padding:15px 24px 8px 24px; color:#111111;">
      <h1 style="margin:0; font-size:24px;">Please confirm your E-Mail</h1>
    </td></tr>
    <tr><td align="center" style="padding:60px 24px 30px 24px;">
      <a href="{{.Link}}" style="background:#2b2118; color:#ffffff; text-decoration:none; padding:12px 24px; border-radius:.5rem;">Click here to confirm</a>
    </td></tr>
    <tr><td align="center" style="padding:0 24px 28px 24px; font-size:13px; color:#333333;">
      The link is valid for 1 day.
    </td></tr>
  </table>
</body>
</html>
`))

var notificationTemplate = template.Must(template.New("notification").Parse(`
<!doctype html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="margin:0; padding:0; background:#ffffff;">
  <table width="650" style="font-family:Geist, system-ui, sans-serif;">
    <tr><td style="padding:18px 24px; background:#fefbf1;">
      <img src="{{.LogoLink}}" alt="Bitcredit" width="120" height="24">
    </td></tr>
    <tr><td style="padding:15px 24px 8px 24px; color:#111111;">
      <h1 style="margin:0; font-size:24px;">{{.Title}}</h1>
    </td></tr>
    <tr><td align="center" style="padding:60px 24px 36px 24px;">
      <a href="{{.Link}}" style="background:#2b2118; color:#ffffff; text-decoration:none; padding:12px 24px; border-radius:.5rem;">Go to eBill</a>
    </td></tr>
    <tr><td align="center" style="padding:16px 24px 28px 24px; font-size:13px; color:#333333;">
      <a href="{{.NotificationLink}}" style="color:#333333; text-decoration:none;">Manage notification settings</a>
    </td></tr>
  </table>
</body>
</html>
`))

type confirmationContext struct {
	LogoLink string
	Link     string
}

type notificationContext struct {
	LogoLink         string
	Title            string
	Link             string
	NotificationLink string
}

func logoLink(hostURL string) (string, error) {
	base, err := url.Parse(hostURL)
	if err != nil {
		return "", fmt.Errorf("mailer: parsing host url: %w", err)
	}
	return base.JoinPath(logoFileName).String(), nil
}

// BuildConfirmationEmail renders the email-confirmation message sent by
// notify.Register, linking to /notifications/confirm_email?token=....
func BuildConfirmationEmail(hostURL, from, to, token string) (Message, error) {
	base, err := url.Parse(hostURL)
	if err != nil {
		return Message{}, fmt.Errorf("mailer: parsing host url: %w", err)
	}
	link := base.JoinPath("/notifications/confirm_email")
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()

	logo, err := logoLink(hostURL)
	if err != nil {
		return Message{}, err
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, confirmationContext{LogoLink: logo, Link: link.String()}); err != nil {
		return Message{}, fmt.Errorf("mailer: rendering confirmation email: %w", err)
	}

	return Message{
		From:    from,
		To:      to,
		Subject: "Please confirm your E-Mail",
		Body:    buf.String(),
	}, nil
}

// BuildNotificationEmail renders a bill-notification message linking to
// {ebillURL}/bill/{id} and the receiver's preferences page.
func BuildNotificationEmail(hostURL, ebillURL, from, to, title, billID, preferencesToken string) (Message, error) {
	base, err := url.Parse(ebillURL)
	if err != nil {
		return Message{}, fmt.Errorf("mailer: parsing ebill url: %w", err)
	}
	link := base.JoinPath("bill", billID)

	prefBase, err := url.Parse(hostURL)
	if err != nil {
		return Message{}, fmt.Errorf("mailer: parsing host url: %w", err)
	}
	notificationLink := prefBase.JoinPath("/notifications/preferences", preferencesToken)

	logo, err := logoLink(hostURL)
	if err != nil {
		return Message{}, err
	}

	var buf bytes.Buffer
	ctx := notificationContext{
		LogoLink:         logo,
		Title:            title,
		Link:             link.String(),
		NotificationLink: notificationLink.String(),
	}
	if err := notificationTemplate.Execute(&buf, ctx); err != nil {
		return Message{}, fmt.Errorf("mailer: rendering notification email: %w", err)
	}

	return Message{
		From:    from,
		To:      to,
		Subject: title,
		Body:    buf.String(),
	}, nil
}
