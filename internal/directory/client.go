package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
)

// Client talks to the external directory service that owns people and
// departments. The engine only asks it for display names and
// department membership.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// Lookup fetches a person record. found=false means the directory does
// not know the id; transport failures are returned as errors.
func (c *Client) Lookup(ctx context.Context, personID string) (model.Person, bool, error) {
	var p model.Person

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/employees/"+url.PathEscape(personID), nil)
	if err != nil {
		return p, false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return p, false, fmt.Errorf("directory lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return p, false, nil
	default:
		c.logger.Warn("directory returned unexpected status",
			zap.String("person_id", personID),
			zap.Int("status", resp.StatusCode),
		)
		return p, false, fmt.Errorf("directory lookup: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, false, fmt.Errorf("directory lookup: decode: %w", err)
	}
	return p, true, nil
}
