package blossom

import (
	"context"

	"github.com/bitcredit-protocol/bcr-relay/store"
)

type fakeFileStore struct {
	files   map[[32]byte]store.File
	failErr error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[[32]byte]store.File{}}
}

func (f *fakeFileStore) Get(ctx context.Context, hash [32]byte) (*store.File, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	file, ok := f.files[hash]
	if !ok {
		return nil, nil
	}
	return &file, nil
}

func (f *fakeFileStore) Insert(ctx context.Context, file store.File) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.files[file.Hash] = file
	return nil
}
