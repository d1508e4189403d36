package ethrequest

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc1155ABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "account", "type": "address"},
			{"internalType": "uint256", "name": "id", "type": "uint256"}
		],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

const accountABI = `[
	{
		"inputs": [
			{"internalType": "bytes32", "name": "hash", "type": "bytes32"},
			{"internalType": "bytes", "name": "signature", "type": "bytes"}
		],
		"name": "isValidSignature",
		"outputs": [{"internalType": "bytes4", "name": "", "type": "bytes4"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "owner",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var (
	erc1155 = mustParseABI(erc1155ABI)
	account = mustParseABI(accountABI)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}

	return parsed
}
