package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	img "github.com/disintegration/imaging"
)

// Options constrain the encoded output
type Options struct {
	MaxKB         int  // size budget for the encoded payload
	IncludeHeader bool // prefix the result with a data-URI header
}

// DefaultOptions matches what the vision pipeline sends to providers
var DefaultOptions = Options{MaxKB: 100}

// FetchError is returned when an image URL is unreachable or its
// content cannot be decoded
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch image %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Encoder downloads images and re-encodes them under a size budget
type Encoder struct {
	client *http.Client
}

// NewEncoder creates an encoder with a fixed download budget
func NewEncoder() *Encoder {
	return &Encoder{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Encode turns an image URL or data URI into a base64 JPEG payload
// under the size budget. The source is downsampled repeatedly until it
// fits.
func (e *Encoder) Encode(ctx context.Context, imageURL string, opts Options) (string, error) {
	if opts.MaxKB <= 0 {
		opts.MaxKB = DefaultOptions.MaxKB
	}

	raw, err := e.fetch(ctx, imageURL)
	if err != nil {
		return "", &FetchError{URL: imageURL, Err: err}
	}

	source, err := img.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", &FetchError{URL: imageURL, Err: err}
	}

	encoded, err := encodeUnderBudget(source, opts.MaxKB)
	if err != nil {
		return "", &FetchError{URL: imageURL, Err: err}
	}

	payload := base64.StdEncoding.EncodeToString(encoded)
	if opts.IncludeHeader {
		payload = "data:image/jpeg;base64," + payload
	}
	return payload, nil
}

// fetch returns the raw bytes behind an http(s) URL or a data URI
func (e *Encoder) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	if strings.HasPrefix(imageURL, "data:") {
		_, payload, found := strings.Cut(imageURL, ",")
		if !found {
			return nil, fmt.Errorf("malformed data URI")
		}
		return base64.StdEncoding.DecodeString(payload)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// encodeUnderBudget re-encodes as JPEG, lowering quality and then
// halving dimensions until the output fits the budget
func encodeUnderBudget(source image.Image, maxKB int) ([]byte, error) {
	budget := maxKB * 1024
	current := source
	quality := 85

	for attempt := 0; attempt < 12; attempt++ {
		var buf bytes.Buffer
		if err := img.Encode(&buf, current, img.JPEG, img.JPEGQuality(quality)); err != nil {
			return nil, err
		}
		if buf.Len() <= budget {
			return buf.Bytes(), nil
		}

		if quality > 40 {
			quality -= 15
			continue
		}
		width := current.Bounds().Dx() / 2
		if width < 16 {
			break
		}
		current = img.Resize(current, width, 0, img.Lanczos)
	}
	return nil, fmt.Errorf("image does not fit %dKB budget", maxKB)
}
