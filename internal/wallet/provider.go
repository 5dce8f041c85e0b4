// Package wallet models the wallet-bridge capability the store connects through.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Signer issues contract calls on behalf of the connected wallet.
type Signer interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Provider is the opaque handle supplied by the wallet bridge.
type Provider interface {
	Signer() Signer
	NetworkID(ctx context.Context) (*big.Int, error)
	ListAccounts(ctx context.Context) ([]common.Address, error)
}

// RPCProvider is a Provider backed by an Ethereum JSON-RPC endpoint.
type RPCProvider struct {
	rpc    *rpc.Client
	client *ethclient.Client
}

// Dial connects to an RPC endpoint with optional proxy support.
func Dial(ctx context.Context, rawURL, proxyURL string) (*RPCProvider, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	httpClient := &http.Client{Timeout: 30 * time.Second, Transport: transport}

	c, err := rpc.DialOptions(ctx, rawURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	return &RPCProvider{rpc: c, client: ethclient.NewClient(c)}, nil
}

func (p *RPCProvider) Signer() Signer { return p.client }

// NetworkID returns the net_version identifier (5777 on Ganache).
func (p *RPCProvider) NetworkID(ctx context.Context) (*big.Int, error) {
	return p.client.NetworkID(ctx)
}

// ListAccounts returns the node-managed accounts (eth_accounts).
func (p *RPCProvider) ListAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

func (p *RPCProvider) Close() {
	p.client.Close()
}

type fixedAccounts struct {
	Provider
	accounts []common.Address
}

// WithAccounts wraps a provider so that ListAccounts reports the given addresses
// instead of asking the node. Useful for watch-only sessions against public nodes.
func WithAccounts(p Provider, accounts ...common.Address) Provider {
	return &fixedAccounts{Provider: p, accounts: append([]common.Address(nil), accounts...)}
}

func (f *fixedAccounts) ListAccounts(context.Context) ([]common.Address, error) {
	return append([]common.Address(nil), f.accounts...), nil
}
