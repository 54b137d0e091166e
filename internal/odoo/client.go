package odoo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"
)

const (
	commonEndpoint = "/xmlrpc/2/common"
	objectEndpoint = "/xmlrpc/2/object"
)

var (
	// ErrAuthFailed is returned when Odoo rejects the credentials
	ErrAuthFailed = errors.New("authentication failed")
	// ErrUnknownUser is returned when no employee matches the requested identity
	ErrUnknownUser = errors.New("user does not exist")
	// ErrMalformedResponse is returned when a reply does not have the expected shape
	ErrMalformedResponse = errors.New("malformed response")
)

// Caller performs a single XML-RPC method call
type Caller interface {
	Call(serviceMethod string, args interface{}, reply interface{}) error
}

// Client represents an Odoo XML-RPC client bound to one database
type Client struct {
	url    string
	db     string
	common Caller
	object Caller
	logger *zap.Logger
}

// NewClient creates a new Odoo client for the server at url
func NewClient(url, db string, logger *zap.Logger) (*Client, error) {
	url = strings.TrimRight(url, "/")

	common, err := xmlrpc.NewClient(url+commonEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create common endpoint client: %w", err)
	}

	object, err := xmlrpc.NewClient(url+objectEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create object endpoint client: %w", err)
	}

	return NewClientWithCallers(url, db, common, object, logger), nil
}

// NewClientWithCallers creates a client over already built endpoint callers
func NewClientWithCallers(url, db string, common, object Caller, logger *zap.Logger) *Client {
	return &Client{
		url:    url,
		db:     db,
		common: common,
		object: object,
		logger: logger,
	}
}

// Authenticate logs in and returns a session for the authenticated user
func (c *Client) Authenticate(username, password string) (*Session, error) {
	var reply interface{}
	args := []interface{}{c.db, username, password, map[string]interface{}{}}
	if err := c.common.Call("authenticate", args, &reply); err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	// Odoo answers false instead of a uid when the login is rejected
	uid, ok := asInt(reply)
	if !ok || uid <= 0 {
		c.logger.Warn("Authentication rejected",
			zap.String("url", c.url),
			zap.String("db", c.db),
			zap.String("username", username))
		return nil, ErrAuthFailed
	}

	c.logger.Info("Authenticated",
		zap.String("url", c.url),
		zap.String("db", c.db),
		zap.String("username", username),
		zap.Int64("uid", uid))

	return &Session{
		client:   c,
		UID:      uid,
		Username: username,
		password: password,
	}, nil
}

// Session is an authenticated handle. It is created once per run and never mutated.
type Session struct {
	client   *Client
	UID      int64
	Username string
	password string
}

// SearchRead runs search_read on model with the given domain and field projection
func (s *Session) SearchRead(model string, domain Domain, fields ...string) ([]Record, error) {
	reply, err := s.searchRead(model, domain, fields)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", model, err)
	}

	s.client.logger.Debug("search_read",
		zap.String("model", model),
		zap.Int("count", len(records)))

	return records, nil
}

func (s *Session) searchRead(model string, domain Domain, fields []string) (interface{}, error) {
	if domain == nil {
		domain = Domain{}
	}
	options := map[string]interface{}{}
	if len(fields) > 0 {
		options["fields"] = fields
	}

	args := []interface{}{
		s.client.db,
		s.UID,
		s.password,
		model,
		"search_read",
		[]interface{}{domain},
		options,
	}

	var reply interface{}
	if err := s.client.object.Call("execute_kw", args, &reply); err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", model, err)
	}
	return reply, nil
}

// Logger returns the client logger
func (s *Session) Logger() *zap.Logger {
	return s.client.logger
}
