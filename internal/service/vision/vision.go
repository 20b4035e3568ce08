// Package vision is the client for the external AI service that judges
// whether a captured photo matches a worker's reference image and declared
// dress code.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Request is one validation of a captured frame.
type Request struct {
	Photo          []byte
	DressCode      string
	ReferencePhoto []byte
}

// Verdict is the validator's judgement.
type Verdict struct {
	IdentityMatch    bool    `json:"identityMatch"`
	DressCodeMatches bool    `json:"dressCodeMatches"`
	Description      string  `json:"description"`
	Confidence       float64 `json:"confidence"`
}

const faceOnlyInstruction = "no reference photo available: confirm only that a human face is present"

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type wireRequest struct {
	CapturedPhoto        string `json:"capturedPhoto"`
	DressCodeDescription string `json:"dressCodeDescription"`
	ReferencePhoto       string `json:"referencePhoto,omitempty"`
	Instruction          string `json:"instruction,omitempty"`
}

// Validate sends the captured photo for judgement. A missing API key yields a
// deterministic negative verdict instead of an error so the flow can show a
// configuration message; transport and decoding failures are hard errors.
func (c *Client) Validate(ctx context.Context, req Request) (Verdict, error) {
	if c.apiKey == "" {
		return Verdict{
			IdentityMatch:    false,
			DressCodeMatches: false,
			Description:      "vision service not configured: missing API key",
			Confidence:       0,
		}, nil
	}

	wire := wireRequest{
		CapturedPhoto:        base64.StdEncoding.EncodeToString(req.Photo),
		DressCodeDescription: req.DressCode,
	}
	if len(req.ReferencePhoto) > 0 {
		wire.ReferencePhoto = base64.StdEncoding.EncodeToString(req.ReferencePhoto)
	} else {
		wire.Instruction = faceOnlyInstruction
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "encoding vision request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, errors.Wrap(err, "building vision request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "calling vision service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Verdict{}, errors.Errorf("vision service returned %d: %s", resp.StatusCode, payload)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Verdict{}, errors.Wrap(err, "decoding vision response")
	}

	return verdict, nil
}
