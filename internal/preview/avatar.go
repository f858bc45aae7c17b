package preview

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
)

// AvatarSource fetches the subject's avatar image.
type AvatarSource interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// HTTPAvatarSource downloads avatars with a plain HTTP GET.
type HTTPAvatarSource struct {
	Client *http.Client
}

func (s HTTPAvatarSource) Fetch(ctx context.Context, url string) (image.Image, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch avatar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch avatar: %s", resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}
	return img, nil
}
