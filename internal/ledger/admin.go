package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// Initialize sets the global admin once
func (c *Contract) Initialize(ctx context.Context, admin common.Address) error {
	return c.mutate(ctx, "initialize", "", func(t *txn) error {
		if err := c.auth.RequireAuth(t.ctx, admin); err != nil {
			return err
		}

		initialized, err := t.initialized()
		if err != nil {
			return err
		}
		if initialized {
			return domain.ErrAlreadyInitialized
		}

		if err := t.put(keyAdmin, admin); err != nil {
			return err
		}
		if err := t.put(keyVersion, uint32(1)); err != nil {
			return err
		}
		if err := t.put(keyInitialized, true); err != nil {
			return err
		}

		t.emit(domain.EventTypeInitialized, "", domain.RegistryData{Admin: admin, Version: 1})
		return nil
	})
}

// Upgrade records a new code hash and bumps the version. It returns the new version.
func (c *Contract) Upgrade(ctx context.Context, codeHash common.Hash) (uint32, error) {
	var version uint32
	err := c.mutate(ctx, "upgrade", "", func(t *txn) error {
		admin, err := t.loadAdmin()
		if err != nil {
			return err
		}
		if err := c.auth.RequireAuth(t.ctx, admin); err != nil {
			return err
		}

		current, err := t.loadVersion()
		if err != nil {
			return err
		}
		version = current + 1

		if err := t.put(keyVersion, version); err != nil {
			return err
		}
		if err := t.put(keyCodeHash, codeHash); err != nil {
			return err
		}

		t.emit(domain.EventTypeUpgraded, "", domain.RegistryData{Admin: admin, Version: version, CodeHash: &codeHash})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// GetAdmin returns the global admin
func (c *Contract) GetAdmin(ctx context.Context) (common.Address, error) {
	var admin common.Address
	err := c.read(ctx, func(t *txn) error {
		var err error
		admin, err = t.loadAdmin()
		return err
	})
	return admin, err
}

// GetVersion returns the ledger version, 0 before initialization
func (c *Contract) GetVersion(ctx context.Context) (uint32, error) {
	var version uint32
	err := c.read(ctx, func(t *txn) error {
		var err error
		version, err = t.loadVersion()
		return err
	})
	return version, err
}

func (c *Contract) GetContractInfo(ctx context.Context) (*domain.ContractInfo, error) {
	info := &domain.ContractInfo{}
	err := c.read(ctx, func(t *txn) error {
		var err error
		if info.Initialized, err = t.initialized(); err != nil {
			return err
		}
		if info.Version, err = t.loadVersion(); err != nil {
			return err
		}
		if _, err = t.get(keyCodeHash, &info.CodeHash); err != nil {
			return err
		}

		admin, err := t.loadAdmin()
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		info.Admin = admin
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// WhitelistTokenContract accepts token for funding project id
func (c *Contract) WhitelistTokenContract(ctx context.Context, admin common.Address, id string, token common.Address) error {
	return c.mutate(ctx, "whitelist_token_contract", id, func(t *txn) error {
		if err := t.requireAdmin(admin); err != nil {
			return err
		}
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		if token == (common.Address{}) {
			return fmt.Errorf("%w: zero token address", domain.ErrInvalidTokenContract)
		}

		tokens, err := t.loadTokens(whitelistKey(id))
		if err != nil {
			return err
		}
		if containsToken(tokens, token) {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyWhitelisted, token.Hex())
		}

		if err := t.put(whitelistKey(id), append(tokens, token)); err != nil {
			return err
		}

		t.emit(domain.EventTypeTokenWhitelisted, id, domain.RegistryData{Admin: admin, Token: &token})
		return nil
	})
}
