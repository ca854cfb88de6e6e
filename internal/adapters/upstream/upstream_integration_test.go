//go:build integration

package upstream_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"postcard/internal/adapters/imageproxy"
	"postcard/internal/adapters/upstream"
	"postcard/internal/domain"
	"postcard/internal/usecases"
	"postcard/test/fixtures"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const webRoot = "/usr/share/nginx/html"

// setupUpstreamContainer starts nginx serving canned upstream payloads.
// Paths under / answer like healthy endpoints; paths under /broken mimic a
// rejected token and an empty embed page. nginx ignores the query string.
func setupUpstreamContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	files := map[string]string{
		"/tweet-result":        fixtures.SyndicationPhotoPost(),
		"/tweet":               fixtures.EmbedPage(),
		"/oembed":              fixtures.OEmbedResponse(),
		"/broken/tweet-result": fixtures.SyndicationEmpty(),
		"/broken/tweet":        fixtures.EmbedPageEmpty(),
		"/broken/oembed":       fixtures.OEmbedResponse(),
	}
	var containerFiles []testcontainers.ContainerFile
	for path, body := range files {
		containerFiles = append(containerFiles, testcontainers.ContainerFile{
			Reader:            strings.NewReader(body),
			ContainerFilePath: webRoot + path,
			FileMode:          0o644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files:        containerFiles,
		WaitingFor:   wait.ForHTTP("/oembed").WithPort("80/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host: %v", err)
	}
	port, err := container.MappedPort(ctx, "80")
	if err != nil {
		t.Fatalf("failed to get port: %v", err)
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestIntegration_EachSourceAgainstContainer(t *testing.T) {
	ctx := context.Background()
	base := setupUpstreamContainer(ctx, t)
	client := upstream.NewClient(upstream.ClientConfig{Timeout: 5 * time.Second})
	ref := domain.PostRef{Handle: "acme", ID: "1765000000000000000"}

	tests := []struct {
		source   usecases.Source
		wantText string
	}{
		{upstream.NewSyndication(client, base, nil), "Shipping the new card renderer today."},
		{upstream.NewEmbed(client, base), "First line & more"},
		{upstream.NewOEmbed(client, base), "Old but gold"},
	}

	for _, tt := range tests {
		t.Run(tt.source.Name(), func(t *testing.T) {
			c, err := tt.source.Attempt(ctx, ref)
			if err != nil {
				t.Fatalf("Attempt() error = %v", err)
			}
			if !strings.HasPrefix(c.Text, tt.wantText) {
				t.Errorf("text = %q, want prefix %q", c.Text, tt.wantText)
			}
		})
	}
}

func TestIntegration_PipelineFallsThroughToOEmbed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	base := setupUpstreamContainer(ctx, t) + "/broken"
	client := upstream.NewClient(upstream.ClientConfig{Timeout: 5 * time.Second})
	uc := usecases.NewScrapePostUseCase(
		[]usecases.Source{
			upstream.NewSyndication(client, base, nil),
			upstream.NewEmbed(client, base),
			upstream.NewOEmbed(client, base),
		},
		imageproxy.NewRewriter(""),
		usecases.Options{SourceTimeout: 5 * time.Second},
	)

	// Act
	record, err := uc.Execute(ctx, "https://x.com/acme/status/42")

	// Assert
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if record.Author.Name != "Acme 🚀 Corp" {
		t.Errorf("name = %q, want oEmbed author", record.Author.Name)
	}
	if record.Author.Handle != "@acme" {
		t.Errorf("handle = %q", record.Author.Handle)
	}
	if record.Timestamp != "2023-02-24T00:00:00.000Z" {
		t.Errorf("timestamp = %q", record.Timestamp)
	}
}
