package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"

	conquest "github.com/bcspragu/Conquest"
)

type Client struct {
	scheme string
	addr   string
	http   *http.Client
}

func New(scheme, addr string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %v", err)
	}

	return &Client{
		scheme: scheme,
		addr:   addr,
		http:   &http.Client{Jar: jar},
	}, nil
}

func (c *Client) CreateUser(name string) (conquest.UserID, error) {
	body := struct {
		Name string `json:"name"`
	}{name}

	req, err := c.newRequest(http.MethodPost, "/api/user", toBody(body))
	if err != nil {
		return "", err
	}

	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return conquest.UserID(resp.UserID), nil
}

func (c *Client) User() (*conquest.User, error) {
	req, err := c.newRequest(http.MethodGet, "/api/user", nil)
	if err != nil {
		return nil, err
	}

	var u conquest.User
	if err := c.do(req, &u); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// CreateGame starts a new game. If opponent is "computer", the server plays
// the other side, otherwise the game waits for someone to join.
func (c *Client) CreateGame(opponent string) (conquest.GameID, error) {
	body := struct {
		Opponent string `json:"opponent,omitempty"`
	}{opponent}

	req, err := c.newRequest(http.MethodPost, "/api/game", toBody(body))
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return conquest.GameID(resp.ID), nil
}

func (c *Client) PendingGames() ([]conquest.GameID, error) {
	req, err := c.newRequest(http.MethodGet, "/api/games", nil)
	if err != nil {
		return nil, err
	}

	var resp []conquest.GameID
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to load pending games: %w", err)
	}
	return resp, nil
}

func (c *Client) Game(gID conquest.GameID) (*conquest.Game, error) {
	req, err := c.newRequest(http.MethodGet, "/api/game/"+string(gID), nil)
	if err != nil {
		return nil, err
	}

	var g conquest.Game
	if err := c.do(req, &g); err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &g, nil
}

func (c *Client) JoinGame(gID conquest.GameID) error {
	req, err := c.newRequest(http.MethodPost, "/api/game/"+string(gID)+"/join", nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	return nil
}

// MoveResult is what the server reports back after a card is placed.
type MoveResult struct {
	Flipped []int               `json:"flipped"`
	Status  conquest.GameStatus `json:"status"`
}

func (c *Client) Move(gID conquest.GameID, pl *conquest.Placement) (*MoveResult, error) {
	req, err := c.newRequest(http.MethodPost, "/api/game/"+string(gID)+"/move", toBody(pl))
	if err != nil {
		return nil, err
	}

	var resp MoveResult
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to place card: %w", err)
	}
	return &resp, nil
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.scheme+"://"+c.addr+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, resp interface{}) error {
	httpResp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return handleError(httpResp)
	}

	if resp != nil {
		if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return nil
}

// HTTPError is returned when the server responds with anything but a 200.
type HTTPError struct {
	StatusCode int
	Body       string
	err        error
}

func (h *HTTPError) Error() string {
	if h.err != nil {
		return fmt.Sprintf("[%d] failed to handle error: %v", h.StatusCode, h.err)
	}
	return fmt.Sprintf("[%d] error from server: %s", h.StatusCode, h.Body)
}

func (h *HTTPError) Unwrap() error {
	return h.err
}

func handleError(resp *http.Response) error {
	dat, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			err:        fmt.Errorf("failed to read error response body: %w", err),
		}
	}

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(dat)),
	}
}

func toBody(req interface{}) io.Reader {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return &errReader{err: err}
	}
	return &buf
}

type errReader struct {
	err error
}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, e.err
}
