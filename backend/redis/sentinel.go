// Package redis provides a replicated, sentinel-managed backend on top of
// the go-redis failover client. The flat configuration arguments are
// reshaped (see ReshapeArguments) before the client is constructed.
//
// Raw argument names: sentinels (required, "host:port,host:port"),
// service_name (master set name, default "mymaster"), db, socket_timeout,
// username, password, ssl, ssl_certfile, ssl_keyfile, ssl_ca_certs.
package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

const defaultServiceName = "mymaster"

var ErrNilClient = errors.New("redis sentinel backend: nil client")

type Backend struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ backend.Backend = (*Backend)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this backend exclusively owns the client
}

// New wraps an existing client (standalone, failover or cluster).
func New(cfg Config) (*Backend, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Backend{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// NewFromArguments reshapes the flat argument namespace and dials a
// failover client. This is the factory to register for the sentinel
// topology:
//
//	reg.Register("redis_sentinel", redis.NewFromArguments)
func NewFromArguments(args backend.Arguments) (backend.Backend, error) {
	shaped, err := ReshapeArguments(args.Options)
	if err != nil {
		return nil, err
	}

	opts := &goredis.FailoverOptions{MasterName: defaultServiceName}
	if name, ok := args.String("service_name"); ok && name != "" {
		opts.MasterName = name
	}
	for _, ep := range shaped["sentinels"].([]Endpoint) {
		opts.SentinelAddrs = append(opts.SentinelAddrs, ep.Addr())
	}
	if db, ok := args.Int("db"); ok {
		opts.DB = db
	}
	if d, ok := args.Seconds("socket_timeout"); ok {
		opts.DialTimeout = d
		opts.ReadTimeout = d
		opts.WriteTimeout = d
	}

	conn := shaped["connection_kwargs"].(map[string]any)
	sent := shaped["sentinel_kwargs"].(map[string]any)
	opts.Username, _ = conn["username"].(string)
	opts.Password, _ = conn["password"].(string)
	opts.SentinelUsername, _ = sent["username"].(string)
	opts.SentinelPassword, _ = sent["password"].(string)

	if useSSL, _ := conn["ssl"].(bool); useSSL {
		tlsConf, err := tlsConfig(conn)
		if err != nil {
			return nil, err
		}
		opts.TLSConfig = tlsConf
	}

	return &Backend{rdb: goredis.NewFailoverClient(opts), closeClient: true}, nil
}

// tlsConfig loads the certificate trio out of the nested kwargs. The trio is
// required together; a missing file errors here the same way the client
// would error on connect.
func tlsConfig(kwargs map[string]any) (*tls.Config, error) {
	certfile, _ := kwargs["ssl_certfile"].(string)
	keyfile, _ := kwargs["ssl_keyfile"].(string)
	cafile, _ := kwargs["ssl_ca_certs"].(string)

	cert, err := tls.LoadX509KeyPair(certfile, keyfile)
	if err != nil {
		return nil, fmt.Errorf("redis sentinel backend: loading client certificate: %w", err)
	}
	caPEM, err := os.ReadFile(cafile)
	if err != nil {
		return nil, fmt.Errorf("redis sentinel backend: loading CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("redis sentinel backend: no certificates in CA bundle %q", cafile)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return v, true, nil
}

func (b *Backend) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	vals, err := b.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // non-positive TTL means no expiry
	}
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

func (b *Backend) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	if ttl < 0 {
		ttl = 0
	}
	pipe := b.rdb.TxPipeline()
	for k, v := range items {
		pipe.Set(ctx, k, v, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, key).Err()
}

func (b *Backend) DeleteMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (b *Backend) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
