// Package storage archives captures and extraction results to blob storage.
// Archiving is best-effort: the extraction response never waits on it and
// never fails because of it.
package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStore persists one named blob.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte) error
}

type azureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStore connects to an Azure storage account with shared-key
// credentials.
func NewAzureStore(accountName, accountKey, container string) (BlobStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("building storage credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("building storage client: %w", err)
	}

	return &azureStore{client: client, container: container}, nil
}

func (s *azureStore) Upload(ctx context.Context, name string, data []byte) error {
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, nil); err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

// NoopStore discards everything; it stands in when archiving is not
// configured.
type NoopStore struct{}

func (NoopStore) Upload(context.Context, string, []byte) error { return nil }
