package faceid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/fras/internal/config"
	"github.com/kozaktomas/fras/internal/database"
)

const defaultModelURL = "http://localhost:8000"

// ModelClient talks to the model server hosting the detector, the landmark
// predictor and the embedding network. It implements Detector,
// LandmarkPredictor and Embedder.
type ModelClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewModelClient creates a new model server client
func NewModelClient(cfg config.ModelConfig) *ModelClient {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = defaultModelURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ModelClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   cfg.Name,
		client:  &http.Client{Timeout: timeout},
	}
}

// Model returns the embedding model name, for reference only
func (c *ModelClient) Model() string {
	return c.model
}

type detectResponse struct {
	Faces []struct {
		Box   []float64 `json:"box"` // [x1, y1, x2, y2]
		Score float64   `json:"score"`
	} `json:"faces"`
}

type landmarksResponse struct {
	Points [][]float64 `json:"points"`
}

type embedResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// encodePNG gives the server a single input format whatever the source was.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// postMultipartImage posts the image as the "file" part plus optional form fields.
func (c *ModelClient) postMultipartImage(ctx context.Context, endpoint string, img image.Image, fields map[string]string) ([]byte, error) {
	imageData, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

func (c *ModelClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// Detect returns face regions in detector order
func (c *ModelClient) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	body, err := c.postMultipartImage(ctx, "/detect", img, nil)
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	regions := make([]Region, 0, len(resp.Faces))
	for i, f := range resp.Faces {
		if len(f.Box) != 4 {
			return nil, fmt.Errorf("face %d: bounding box has %d values", i, len(f.Box))
		}
		regions = append(regions, Region{
			Box:   image.Rect(int(f.Box[0]), int(f.Box[1]), int(f.Box[2]), int(f.Box[3])),
			Score: f.Score,
		})
	}
	return regions, nil
}

// Predict returns the landmarks found inside region
func (c *ModelClient) Predict(ctx context.Context, img image.Image, region Region) (Shape, error) {
	b := region.Box
	box := strings.Join([]string{
		strconv.Itoa(b.Min.X), strconv.Itoa(b.Min.Y), strconv.Itoa(b.Max.X), strconv.Itoa(b.Max.Y),
	}, ",")

	body, err := c.postMultipartImage(ctx, "/landmarks", img, map[string]string{"box": box})
	if err != nil {
		return Shape{}, err
	}

	var resp landmarksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Shape{}, fmt.Errorf("failed to parse response: %w", err)
	}

	shape := Shape{Points: make([]Point, 0, len(resp.Points))}
	for i, p := range resp.Points {
		if len(p) != 2 {
			return Shape{}, fmt.Errorf("landmark %d has %d coordinates", i, len(p))
		}
		shape.Points = append(shape.Points, Point{X: p[0], Y: p[1]})
	}
	return shape, nil
}

// Embed computes the descriptor of an aligned chip
func (c *ModelClient) Embed(ctx context.Context, chip image.Image) (database.Descriptor, error) {
	body, err := c.postMultipartImage(ctx, "/embed", chip, nil)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(resp.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	if resp.Dim != 0 && resp.Dim != len(resp.Embedding) {
		return nil, fmt.Errorf("%w: server reported %d, sent %d", ErrDimension, resp.Dim, len(resp.Embedding))
	}

	return database.Descriptor(resp.Embedding), nil
}

// Health checks that the model server is reachable
func (c *ModelClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("model server health check: %w", err)
	}
	return nil
}
