// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// TokenIssuer moves tokens on behalf of the ledger. Calls are made after the
// ledger state change they pay for has been committed
type TokenIssuer interface {
	// Mint credits newly issued tokens to an address
	Mint(ctx context.Context, to common.Address, amount uint64) error
	// Transfer pays an address from the reward treasury
	Transfer(ctx context.Context, to common.Address, amount uint64) error
}
