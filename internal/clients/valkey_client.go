package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/sentitable/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_WIDGET_KEY_PREFIX = "sentitable:widget:"
	VALKEY_WIDGET_TTL        = 7 * 24 * time.Hour
	VALKEY_RETRIES           = 3
)

type ValkeyOptions struct {
	Address  string
	Password string
	UseTLS   bool
}

// ValkeyStateStore persists widget state as JSON under one key per widget.
type ValkeyStateStore struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.Mutex
}

func newValkeyClient(opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress: []string{
			opts.Address,
		},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if opts.UseTLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func NewValkeyStateStore(opts ValkeyOptions) (*ValkeyStateStore, error) {
	client, err := newValkeyClient(opts)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", opts.Address))
	return &ValkeyStateStore{Client: client, opts: opts}, nil
}

func (vs *ValkeyStateStore) Close() {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.Client.Close()
}

func (vs *ValkeyStateStore) client() valkey.Client {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.Client
}

func (vs *ValkeyStateStore) recreateClient() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := newValkeyClient(vs.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vs.Client.Close()
	vs.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func widgetKey(id string) string {
	return VALKEY_WIDGET_KEY_PREFIX + id
}

func (vs *ValkeyStateStore) Save(ctx context.Context, id string, state models.WidgetState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to marshal widget state: %w", err)
	}

	set := func(c valkey.Client) valkey.Completed {
		return c.B().Set().Key(widgetKey(id)).Value(valkey.BinaryString(payload)).ExSeconds(int64(VALKEY_WIDGET_TTL / time.Second)).Build()
	}
	if err := vs.DoWithRetry(ctx, set, VALKEY_RETRIES).Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] failed to save widget state: %w", err)
	}
	return nil
}

func (vs *ValkeyStateStore) Load(ctx context.Context, id string) (models.WidgetState, bool, error) {
	var state models.WidgetState

	get := func(c valkey.Client) valkey.Completed {
		return c.B().Get().Key(widgetKey(id)).Build()
	}
	res := vs.DoWithRetry(ctx, get, VALKEY_RETRIES)
	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return state, false, nil
		}
		return state, false, fmt.Errorf("[ValkeyClient] failed to load widget state: %w", err)
	}

	raw, err := res.AsBytes()
	if err != nil {
		return state, false, fmt.Errorf("[ValkeyClient] failed to read widget state: %w", err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, false, fmt.Errorf("[ValkeyClient] failed to unmarshal widget state: %w", err)
	}
	return state, true, nil
}

func (vs *ValkeyStateStore) Delete(ctx context.Context, id string) error {
	del := func(c valkey.Client) valkey.Completed {
		return c.B().Del().Key(widgetKey(id)).Build()
	}
	if err := vs.DoWithRetry(ctx, del, VALKEY_RETRIES).Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] failed to delete widget state: %w", err)
	}
	return nil
}

// DoWithRetry retries transient failures. Commands are rebuilt per attempt
// since valkey recycles them after Do. A nil reply is an answer, not a failure.
func (vs *ValkeyStateStore) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c := vs.client()
		result = c.Do(ctx, build(c))
		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vs.recreateClient()
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(250 * time.Millisecond):
		}
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
