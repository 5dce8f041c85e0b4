// Package chaintest provides an in-memory chain that answers eth_call with ABI-encoded
// canned values. It implements wallet.Provider and wallet.Signer for tests.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"DAOScope/internal/contract"
	"DAOScope/internal/wallet"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrReverted is returned for calls to methods without a registered handler.
var ErrReverted = errors.New("execution reverted")

// Handler answers one method call with decoded arguments.
type Handler func(args []interface{}) ([]interface{}, error)

// Call is one recorded contract call.
type Call struct {
	To     common.Address
	From   common.Address
	Method string
	Args   []interface{}
}

type fakeContract struct {
	abi      abi.ABI
	handlers map[string]Handler
}

// Chain is a fake node. The zero value is not usable; use New.
type Chain struct {
	mu          sync.Mutex
	networkID   *big.Int
	accounts    []common.Address
	contracts   map[common.Address]*fakeContract
	balances    map[common.Address]map[common.Address]*big.Int
	calls       []Call
	networkErr  error
	accountsErr error

	// BeforeCall runs before a call is answered, outside the chain lock. A non-nil
	// error fails the call. Tests use it to block or reorder in-flight reads.
	BeforeCall func(ctx context.Context, call Call) error
}

// New creates a chain reporting networkID and the given authorized accounts.
func New(networkID int64, accounts ...common.Address) *Chain {
	return &Chain{
		networkID: big.NewInt(networkID),
		accounts:  accounts,
		contracts: make(map[common.Address]*fakeContract),
		balances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

var _ wallet.Provider = (*Chain)(nil)

func (c *Chain) Signer() wallet.Signer { return c }

func (c *Chain) NetworkID(context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.networkErr != nil {
		return nil, c.networkErr
	}
	return new(big.Int).Set(c.networkID), nil
}

func (c *Chain) ListAccounts(context.Context) ([]common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accountsErr != nil {
		return nil, c.accountsErr
	}
	return append([]common.Address(nil), c.accounts...), nil
}

// FailNetwork makes NetworkID return err.
func (c *Chain) FailNetwork(err error) {
	c.mu.Lock()
	c.networkErr = err
	c.mu.Unlock()
}

// FailAccounts makes ListAccounts return err.
func (c *Chain) FailAccounts(err error) {
	c.mu.Lock()
	c.accountsErr = err
	c.mu.Unlock()
}

// Deploy registers a contract at addr, or returns the one already there.
func (c *Chain) Deploy(addr common.Address, a abi.ABI) *Contract {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.contracts[addr]; !ok {
		c.contracts[addr] = &fakeContract{abi: a, handlers: make(map[string]Handler)}
	}
	return &Contract{chain: c, addr: addr}
}

// DeployToken registers an ERC-20 whose balanceOf answers from SetBalance.
func (c *Chain) DeployToken(addr common.Address) *Contract {
	k := c.Deploy(addr, contract.TokenABI)
	return k.Handle("balanceOf", func(args []interface{}) ([]interface{}, error) {
		holder := args[0].(common.Address)
		c.mu.Lock()
		defer c.mu.Unlock()
		if bal, ok := c.balances[addr][holder]; ok {
			return []interface{}{new(big.Int).Set(bal)}, nil
		}
		return []interface{}{big.NewInt(0)}, nil
	})
}

// SetBalance sets holder's balance of token.
func (c *Chain) SetBalance(token, holder common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balances[token] == nil {
		c.balances[token] = make(map[common.Address]*big.Int)
	}
	c.balances[token][holder] = new(big.Int).Set(amount)
}

// Calls returns a copy of every contract call answered or attempted so far.
func (c *Chain) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallCount returns how many contract calls were issued.
func (c *Chain) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// CallContract implements wallet.Signer.
func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, fmt.Errorf("chaintest: call without target")
	}
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("chaintest: short calldata")
	}

	c.mu.Lock()
	k, ok := c.contracts[*msg.To]
	if !ok {
		// calling an address without code returns empty data
		c.calls = append(c.calls, Call{To: *msg.To, From: msg.From})
		c.mu.Unlock()
		return nil, nil
	}
	method, err := k.abi.MethodById(msg.Data[:4])
	if err != nil {
		c.mu.Unlock()
		return nil, ErrReverted
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("chaintest: unpack %s args: %w", method.Name, err)
	}
	call := Call{To: *msg.To, From: msg.From, Method: method.Name, Args: args}
	c.calls = append(c.calls, call)
	h := k.handlers[method.Name]
	hook := c.BeforeCall
	c.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrReverted
	}
	out, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

// Contract configures the answers of one deployed contract.
type Contract struct {
	chain *Chain
	addr  common.Address
}

func (k *Contract) Address() common.Address { return k.addr }

// Handle sets the handler for method.
func (k *Contract) Handle(method string, h Handler) *Contract {
	k.chain.mu.Lock()
	defer k.chain.mu.Unlock()
	fc := k.chain.contracts[k.addr]
	if _, ok := fc.abi.Methods[method]; !ok {
		panic("chaintest: no method " + method)
	}
	fc.handlers[method] = h
	return k
}

// Returns makes method answer with fixed values.
func (k *Contract) Returns(method string, values ...interface{}) *Contract {
	return k.Handle(method, func([]interface{}) ([]interface{}, error) {
		return values, nil
	})
}

// Fails makes method answer with err.
func (k *Contract) Fails(method string, err error) *Contract {
	return k.Handle(method, func([]interface{}) ([]interface{}, error) {
		return nil, err
	})
}
