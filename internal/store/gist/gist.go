// Package gist implements the store.Store interface backed by a GitHub
// Gist: the whole ledger lives in one JSON file of one gist.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/groblegark/kofid/internal/model"
	"github.com/groblegark/kofid/internal/store"
)

// FileName is the gist file holding the ledger document.
const FileName = "kofi.json"

const apiVersion = "2022-11-28"

// Gist id extraction patterns, most specific first. Raw links, gist page
// links, and bare hex ids are all accepted.
var (
	rawHostPattern  = regexp.MustCompile(`(?i)gist\.githubusercontent\.com/[^/]+/([a-f0-9]+)/raw`)
	rawPathPattern  = regexp.MustCompile(`(?i)/([a-f0-9]+)/raw/`)
	pageHostPattern = regexp.MustCompile(`(?i)gist\.github\.com/[^/]+/([a-f0-9]+)`)
	bareIDPattern   = regexp.MustCompile(`(?i)^[a-f0-9]+$`)
)

// ExtractID resolves the gist id from an explicit id or any of the URL
// shapes GitHub hands out for a gist.
func ExtractID(gistURL, gistID string) (string, error) {
	if gistID != "" && bareIDPattern.MatchString(gistID) {
		return gistID, nil
	}
	if gistURL != "" {
		for _, p := range []*regexp.Regexp{rawHostPattern, pageHostPattern, rawPathPattern} {
			if m := p.FindStringSubmatch(gistURL); m != nil {
				return m[1], nil
			}
		}
	}
	return "", fmt.Errorf("could not resolve gist id from %q", gistURL)
}

// Store implements store.Store on the GitHub Gists API.
type Store struct {
	httpClient *http.Client
	baseURL    string
	token      string
	gistID     string
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New returns a gist-backed store for the given gist id, authenticated with
// the given token.
func New(token, gistID string) *Store {
	return &Store{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.github.com",
		token:      token,
		gistID:     gistID,
	}
}

// NewWithBaseURL returns a store targeting a non-default API endpoint.
// Used by tests and GitHub Enterprise deployments.
func NewWithBaseURL(token, gistID, baseURL string) *Store {
	s := New(token, gistID)
	s.baseURL = baseURL
	return s
}

type gistFile struct {
	Content string `json:"content"`
}

type gistDocument struct {
	Description string              `json:"description,omitempty"`
	Files       map[string]gistFile `json:"files"`
}

// Load fetches the ledger document. A missing gist, missing file, or
// unparseable content all yield an empty ledger; only transport and API
// failures are errors.
func (s *Store) Load(ctx context.Context) (*model.Ledger, error) {
	req, err := s.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.NewLedger(), nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get gist: %d %s", resp.StatusCode, body)
	}

	var doc gistDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode gist response: %w", err)
	}

	file, ok := doc.Files[FileName]
	if !ok || file.Content == "" {
		return model.NewLedger(), nil
	}
	return model.DecodeLedger([]byte(file.Content)), nil
}

// Save writes the whole ledger back, stamping the gist description with the
// update time.
func (s *Store) Save(ctx context.Context, l *model.Ledger) error {
	content, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	doc := gistDocument{
		Description: fmt.Sprintf("Last updated at %s", time.Now().UTC().Format(time.RFC3339)),
		Files:       map[string]gistFile{FileName: {Content: string(content)}},
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal gist request: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPatch, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("update gist: %d %s", resp.StatusCode, respBody)
	}
	return nil
}

// Close is a no-op for the gist store.
func (s *Store) Close() error { return nil }

func (s *Store) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/gists/"+s.gistID, body)
	if err != nil {
		return nil, fmt.Errorf("build gist request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	return req, nil
}
