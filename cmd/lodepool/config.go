// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/lodepool/lodepool/lode"
)

// genesisConfig is the on-disk form of the pool genesis. Amounts accept
// decimal or 0x-prefixed hex strings.
type genesisConfig struct {
	Owner        string `yaml:"owner"`
	Pool         string `yaml:"pool"`
	RewardCap    string `yaml:"rewardCap"`
	LockDuration uint64 `yaml:"lockDuration"`
	Accounts     []struct {
		Address string `yaml:"address"`
		Balance string `yaml:"balance"`
	} `yaml:"accounts"`
}

type genesis struct {
	Owner        lode.Address
	Pool         lode.Address
	RewardCap    *big.Int
	LockDuration uint64
	Accounts     []genesisAccount
}

type genesisAccount struct {
	Address lode.Address
	Balance *big.Int
}

func loadGenesis(ctx *cli.Context) (*genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return devnetGenesis(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read genesis file [%v]", path)
	}
	var cfg genesisConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse genesis file [%v]", path)
	}
	return cfg.resolve()
}

func (cfg *genesisConfig) resolve() (*genesis, error) {
	owner, err := lode.ParseAddress(cfg.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "genesis: owner")
	}
	pool, err := lode.ParseAddress(cfg.Pool)
	if err != nil {
		return nil, errors.Wrap(err, "genesis: pool")
	}
	rewardCap, ok := math.ParseBig256(cfg.RewardCap)
	if !ok {
		return nil, errors.Errorf("genesis: invalid reward cap %q", cfg.RewardCap)
	}
	gene := &genesis{
		Owner:        *owner,
		Pool:         *pool,
		RewardCap:    rewardCap,
		LockDuration: cfg.LockDuration,
	}
	for _, acc := range cfg.Accounts {
		addr, err := lode.ParseAddress(acc.Address)
		if err != nil {
			return nil, errors.Wrap(err, "genesis: account address")
		}
		balance, ok := math.ParseBig256(acc.Balance)
		if !ok {
			return nil, errors.Errorf("genesis: invalid balance %q for %v", acc.Balance, addr)
		}
		gene.Accounts = append(gene.Accounts, genesisAccount{Address: *addr, Balance: balance})
	}
	return gene, nil
}

// devnetGenesis returns a throwaway setup with a few funded accounts,
// for local development only.
func devnetGenesis() *genesis {
	var (
		oneMillion = new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18))
		accounts   = []lode.Address{
			lode.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa"),
			lode.MustParseAddress("0x435933c8064b4ae76be665428e0307ef2ccfbd68"),
			lode.MustParseAddress("0x0f872421dc479f3c11edd89512731814d0598db5"),
		}
	)
	gene := &genesis{
		Owner:        accounts[0],
		Pool:         lode.MustParseAddress("0x1de8ca2f973d026300af89041b0ecb1c0803a7e6"),
		RewardCap:    new(big.Int).Mul(big.NewInt(100_000), big.NewInt(1e18)),
		LockDuration: lode.DefaultLockDuration,
	}
	for _, addr := range accounts {
		gene.Accounts = append(gene.Accounts, genesisAccount{Address: addr, Balance: oneMillion})
	}
	return gene
}
