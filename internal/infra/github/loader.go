package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"quiz-review-service/internal/domain"
)

// treePattern matches https://github.com/<owner>/<repo>/tree|blob/<branch>/<path>.
var treePattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/(?:tree|blob)/([^/]+)/(.+)$`)

// Loader fetches a JSON array of questions from a local path or a GitHub
// repository URL, which is rewritten into a contents-API call and
// base64-decoded.
type Loader struct {
	client  *http.Client
	apiBase string
}

func NewLoader() *Loader {
	return &Loader{
		client:  &http.Client{Timeout: 15 * time.Second},
		apiBase: "https://api.github.com",
	}
}

// NewLoaderWithAPI points the loader at an alternate contents-API host (tests).
func NewLoaderWithAPI(client *http.Client, apiBase string) *Loader {
	return &Loader{client: client, apiBase: apiBase}
}

// Fetch loads questions from pathOrURL: repository URLs go through the
// contents API, anything else is read as a local file.
func (l *Loader) Fetch(ctx context.Context, pathOrURL string) ([]domain.Question, error) {
	if strings.HasPrefix(pathOrURL, "https://github.com/") {
		return l.fetchRepository(ctx, pathOrURL)
	}
	return l.fetchLocal(pathOrURL)
}

// ConvertToAPIURL rewrites a repository tree/blob URL into a contents-API URL.
func (l *Loader) ConvertToAPIURL(url string) (string, error) {
	m := treePattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidSourceURL, url)
	}
	owner, repo, branch, path := m[1], m[2], m[3], m[4]
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", l.apiBase, owner, repo, path, branch), nil
}

func (l *Loader) fetchLocal(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("read question file: %w", err)
	}
	return decodeQuestions(data)
}

func (l *Loader) fetchRepository(ctx context.Context, url string) ([]domain.Question, error) {
	apiURL, err := l.ConvertToAPIURL(url)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch question file: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, url)
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceForbidden, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("contents API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read contents response: %w", err)
	}
	var contents struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &contents); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}
	if contents.Content == "" {
		return nil, fmt.Errorf("%w: empty content field", domain.ErrMalformedContent)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(contents.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}
	return decodeQuestions(decoded)
}

func decodeQuestions(data []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}
	return questions, nil
}
