package main

import (
	"log"

	"github.com/citizenwallet/tokengov/internal/common"
)

func main() {
	log.Default().Println("generating...")
	log.Default().Println(" ")

	pk, address, err := common.GenerateHexPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Printf("private key: %s\n", pk)
	log.Default().Printf("address: %s\n", address)
}
