// Package directory is the read-only client of the personnel and client
// lookup APIs.
package directory

import (
	"net/http"
	"net/url"
	"os"

	"suratgen/bizerror"
	"suratgen/client/rest"
	"suratgen/session"
)

type Client struct {
	invoker *rest.Invoker
}

func NewClient(baseURL string) *Client {
	return &Client{invoker: rest.NewInvoker(baseURL)}
}

func NewClientFromEnv() *Client {
	baseURL := os.Getenv("DIRECTORY_API_URL")
	if baseURL == "" {
		baseURL = os.Getenv("RECORDS_API_URL")
	}
	if baseURL == "" {
		baseURL = "https://api.centri.id"
	}
	return NewClient(baseURL)
}

type Personnel struct {
	ID                string `json:"id"`
	ExternalID        string `json:"externalId"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Department        string `json:"department"`
	JobTitle          string `json:"jobTitle"`
	PreferredUsername string `json:"preferredUsername"`
	IsActive          bool   `json:"isActive"`
	Status            string `json:"status"`
	Role              string `json:"role"`
}

type Klien struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Group           string `json:"group"`
	ContactName     string `json:"contact_name"`
	ContactPosition string `json:"contact_position"`
	ContactEmail    string `json:"contact_email"`
	ContactPhone    string `json:"contact_phone"`
	Status          string `json:"status"`
	PriorityNumber  int    `json:"priority_number"`
	IsWapu          bool   `json:"isWapu"`
}

func (c *Client) SearchPersonnel(s *session.Session, q string) ([]Personnel, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	list := []Personnel{}
	if err := c.invoker.DoJSON(s, http.MethodGet, "/identities/search", query, nil, &list); err != nil {
		return nil, mapUpstreamError(err)
	}
	return list, nil
}

func (c *Client) GetPersonnelByID(s *session.Session, id string) (*Personnel, error) {
	p := Personnel{}
	if err := c.invoker.DoJSON(s, http.MethodGet, "/identities/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, mapUpstreamError(err)
	}
	return &p, nil
}

func (c *Client) SearchClients(s *session.Session, q string) ([]Klien, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	list := []Klien{}
	if err := c.invoker.DoJSON(s, http.MethodGet, "/clients/search", query, nil, &list); err != nil {
		return nil, mapUpstreamError(err)
	}
	return list, nil
}

func (c *Client) GetClientByID(s *session.Session, id string) (*Klien, error) {
	k := Klien{}
	if err := c.invoker.DoJSON(s, http.MethodGet, "/clients/"+url.PathEscape(id), nil, nil, &k); err != nil {
		return nil, mapUpstreamError(err)
	}
	return &k, nil
}

func (c *Client) ListClientTypes(s *session.Session) ([]string, error) {
	list := []string{}
	if err := c.invoker.DoJSON(s, http.MethodGet, "/clients/types", nil, nil, &list); err != nil {
		return nil, mapUpstreamError(err)
	}
	return list, nil
}

func mapUpstreamError(err error) error {
	if httpErr, ok := err.(*rest.ErrHttpInvoke); ok {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return bizerror.ErrNotFound
		case http.StatusUnauthorized:
			return bizerror.ErrUnauthenticated
		}
	}
	return &bizerror.ErrUpstreamUnavailable{Cause: err}
}
