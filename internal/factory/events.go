package factory

import (
	"fmt"

	"merchantIndexer/internal/felt"
)

// Event is a decoded factory event. The concrete type identifies the variant.
type Event interface {
	EventName() string
	isFactoryEvent()
}

// MerchantCreated is emitted when the factory deploys a merchant account and
// its points contract.
type MerchantCreated struct {
	Merchant       felt.Felt
	PointsContract felt.Felt
}

type UserCreated struct {
	User      felt.Felt
	PublicKey felt.Felt
}

type Paused struct {
	Account felt.Felt
}

type Unpaused struct {
	Account felt.Felt
}

type OwnershipTransferred struct {
	PreviousOwner felt.Felt
	NewOwner      felt.Felt
}

type OwnershipTransferStarted struct {
	PreviousOwner felt.Felt
	NewOwner      felt.Felt
}

type Upgraded struct {
	ClassHash felt.Felt
}

// Generic holds a variant that has a layout in the ABI but no Go type.
type Generic struct {
	Name   string
	Fields Values
}

func (MerchantCreated) EventName() string          { return "MerchantCreated" }
func (UserCreated) EventName() string              { return "UserCreated" }
func (Paused) EventName() string                   { return "Paused" }
func (Unpaused) EventName() string                 { return "Unpaused" }
func (OwnershipTransferred) EventName() string     { return "OwnershipTransferred" }
func (OwnershipTransferStarted) EventName() string { return "OwnershipTransferStarted" }
func (Upgraded) EventName() string                 { return "Upgraded" }
func (g Generic) EventName() string                { return g.Name }

func (MerchantCreated) isFactoryEvent()          {}
func (UserCreated) isFactoryEvent()              {}
func (Paused) isFactoryEvent()                   {}
func (Unpaused) isFactoryEvent()                 {}
func (OwnershipTransferred) isFactoryEvent()     {}
func (OwnershipTransferStarted) isFactoryEvent() {}
func (Upgraded) isFactoryEvent()                 {}
func (Generic) isFactoryEvent()                  {}

// Values are decoded member values keyed by member name.
type Values map[string][]felt.Felt

// One returns a single-felt member.
func (v Values) One(name string) (felt.Felt, error) {
	vals, ok := v[name]
	if !ok || len(vals) != 1 {
		return felt.Felt{}, fmt.Errorf("%w: member %s", ErrLayoutMismatch, name)
	}
	return vals[0], nil
}

type constructor func(Values) (Event, error)

var constructors = map[string]constructor{
	"MerchantCreated": func(v Values) (Event, error) {
		var ev MerchantCreated
		var err error
		if ev.Merchant, err = v.One("merchant"); err != nil {
			return nil, err
		}
		if ev.PointsContract, err = v.One("points_contract"); err != nil {
			return nil, err
		}
		return ev, nil
	},
	"UserCreated": func(v Values) (Event, error) {
		var ev UserCreated
		var err error
		if ev.User, err = v.One("user"); err != nil {
			return nil, err
		}
		if ev.PublicKey, err = v.One("public_key"); err != nil {
			return nil, err
		}
		return ev, nil
	},
	"Paused": func(v Values) (Event, error) {
		account, err := v.One("account")
		if err != nil {
			return nil, err
		}
		return Paused{Account: account}, nil
	},
	"Unpaused": func(v Values) (Event, error) {
		account, err := v.One("account")
		if err != nil {
			return nil, err
		}
		return Unpaused{Account: account}, nil
	},
	"OwnershipTransferred": func(v Values) (Event, error) {
		prev, next, err := ownerPair(v)
		if err != nil {
			return nil, err
		}
		return OwnershipTransferred{PreviousOwner: prev, NewOwner: next}, nil
	},
	"OwnershipTransferStarted": func(v Values) (Event, error) {
		prev, next, err := ownerPair(v)
		if err != nil {
			return nil, err
		}
		return OwnershipTransferStarted{PreviousOwner: prev, NewOwner: next}, nil
	},
	"Upgraded": func(v Values) (Event, error) {
		classHash, err := v.One("class_hash")
		if err != nil {
			return nil, err
		}
		return Upgraded{ClassHash: classHash}, nil
	},
}

func ownerPair(v Values) (felt.Felt, felt.Felt, error) {
	prev, err := v.One("previous_owner")
	if err != nil {
		return felt.Felt{}, felt.Felt{}, err
	}
	next, err := v.One("new_owner")
	if err != nil {
		return felt.Felt{}, felt.Felt{}, err
	}
	return prev, next, nil
}
