package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/models"
)

// AzureStore keeps files as block blobs in a container addressed by a SAS URL.
type AzureStore struct {
	client *container.Client
	keys   prefixed
}

func NewAzureStore(cfg config.AzureConfig) (*AzureStore, error) {
	client, err := container.NewClientWithNoCredential(cfg.ContainerURL, &container.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: "filedrop"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}
	return &AzureStore{client: client, keys: newPrefixed(cfg.Prefix)}, nil
}

func (s *AzureStore) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	blob := s.client.NewBlockBlobClient(s.keys.key(name))
	if _, err := blob.UploadStream(ctx, r, nil); err != nil {
		return fmt.Errorf("failed to put %s: %w", name, err)
	}
	return nil
}

func (s *AzureStore) List(ctx context.Context) ([]models.StoredFile, error) {
	files := []models.StoredFile{}
	prefix := string(s.keys)
	pager := s.client.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list container: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name, ok := s.keys.name(*item.Name)
			if !ok {
				continue
			}
			var size int64
			if item.Properties != nil && item.Properties.ContentLength != nil {
				size = *item.Properties.ContentLength
			}
			files = append(files, models.StoredFile{Name: name, Size: size})
		}
	}
	return files, nil
}

func (s *AzureStore) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	resp, err := s.client.NewBlobClient(s.keys.key(name)).DownloadStream(ctx, nil)
	if err != nil {
		return nil, 0, azureError(err)
	}
	var size int64
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}
	return resp.Body, size, nil
}

func (s *AzureStore) Delete(ctx context.Context, name string) error {
	if _, err := s.client.NewBlobClient(s.keys.key(name)).Delete(ctx, nil); err != nil {
		return azureError(err)
	}
	return nil
}

func azureError(err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return ErrNotFound
	}
	return err
}
