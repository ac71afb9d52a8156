package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// RootEvent is the factory contract's top-level event enum.
const RootEvent = "contracts::factory::InfiniRewardsFactory::Event"

const factoryABIJSON = `[
  {
    "type": "event",
    "name": "contracts::factory::InfiniRewardsFactory::MerchantCreated",
    "kind": "struct",
    "members": [
      {"name": "merchant", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"},
      {"name": "points_contract", "type": "core::starknet::contract_address::ContractAddress", "kind": "data"}
    ]
  },
  {
    "type": "event",
    "name": "contracts::factory::InfiniRewardsFactory::UserCreated",
    "kind": "struct",
    "members": [
      {"name": "user", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"},
      {"name": "public_key", "type": "core::felt252", "kind": "data"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_security::pausable::PausableComponent::Paused",
    "kind": "struct",
    "members": [
      {"name": "account", "type": "core::starknet::contract_address::ContractAddress", "kind": "data"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_security::pausable::PausableComponent::Unpaused",
    "kind": "struct",
    "members": [
      {"name": "account", "type": "core::starknet::contract_address::ContractAddress", "kind": "data"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_security::pausable::PausableComponent::Event",
    "kind": "enum",
    "variants": [
      {"name": "Paused", "type": "openzeppelin_security::pausable::PausableComponent::Paused", "kind": "nested"},
      {"name": "Unpaused", "type": "openzeppelin_security::pausable::PausableComponent::Unpaused", "kind": "nested"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_access::ownable::ownable::OwnableComponent::OwnershipTransferred",
    "kind": "struct",
    "members": [
      {"name": "previous_owner", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"},
      {"name": "new_owner", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_access::ownable::ownable::OwnableComponent::OwnershipTransferStarted",
    "kind": "struct",
    "members": [
      {"name": "previous_owner", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"},
      {"name": "new_owner", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_access::ownable::ownable::OwnableComponent::Event",
    "kind": "enum",
    "variants": [
      {"name": "OwnershipTransferred", "type": "openzeppelin_access::ownable::ownable::OwnableComponent::OwnershipTransferred", "kind": "nested"},
      {"name": "OwnershipTransferStarted", "type": "openzeppelin_access::ownable::ownable::OwnableComponent::OwnershipTransferStarted", "kind": "nested"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_upgrades::upgradeable::UpgradeableComponent::Upgraded",
    "kind": "struct",
    "members": [
      {"name": "class_hash", "type": "core::starknet::class_hash::ClassHash", "kind": "data"}
    ]
  },
  {
    "type": "event",
    "name": "openzeppelin_upgrades::upgradeable::UpgradeableComponent::Event",
    "kind": "enum",
    "variants": [
      {"name": "Upgraded", "type": "openzeppelin_upgrades::upgradeable::UpgradeableComponent::Upgraded", "kind": "nested"}
    ]
  },
  {
    "type": "event",
    "name": "contracts::factory::InfiniRewardsFactory::Event",
    "kind": "enum",
    "variants": [
      {"name": "MerchantCreated", "type": "contracts::factory::InfiniRewardsFactory::MerchantCreated", "kind": "nested"},
      {"name": "UserCreated", "type": "contracts::factory::InfiniRewardsFactory::UserCreated", "kind": "nested"},
      {"name": "PausableEvent", "type": "openzeppelin_security::pausable::PausableComponent::Event", "kind": "flat"},
      {"name": "OwnableEvent", "type": "openzeppelin_access::ownable::ownable::OwnableComponent::Event", "kind": "flat"},
      {"name": "UpgradeableEvent", "type": "openzeppelin_upgrades::upgradeable::UpgradeableComponent::Event", "kind": "flat"}
    ]
  }
]`

// AbiEntry is one item of a Cairo contract ABI. Only event items are kept.
type AbiEntry struct {
	Type     string      `json:"type"`
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Members  []AbiMember `json:"members,omitempty"`
	Variants []AbiMember `json:"variants,omitempty"`
}

// AbiMember is a struct member or enum variant of an event item.
type AbiMember struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Kind string `json:"kind"`
}

var (
	factorySchema     *Schema
	factorySchemaOnce sync.Once
	factorySchemaErr  error
)

// FactorySchema returns the parsed factory event schema.
func FactorySchema() (*Schema, error) {
	factorySchemaOnce.Do(func() {
		factorySchema, factorySchemaErr = ParseSchema(strings.NewReader(factoryABIJSON), RootEvent)
	})
	return factorySchema, factorySchemaErr
}

func indexEvents(entries []AbiEntry) (map[string]AbiEntry, error) {
	events := make(map[string]AbiEntry, len(entries))
	for _, entry := range entries {
		if entry.Type != "event" {
			continue
		}
		if entry.Kind != "struct" && entry.Kind != "enum" {
			return nil, fmt.Errorf("event %s: unsupported kind %q", entry.Name, entry.Kind)
		}
		events[entry.Name] = entry
	}
	return events, nil
}

func decodeEntries(data []byte) ([]AbiEntry, error) {
	var entries []AbiEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	return entries, nil
}
