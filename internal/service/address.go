// internal/service/address.go
package service

import (
	"regexp"
	"strings"
)

var (
	evmAddress      = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tronAddress     = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	bitcoinAddress  = regexp.MustCompile(`^(bc1[02-9ac-hj-np-z]{11,71}|[13][1-9A-HJ-NP-Za-km-z]{25,34})$`)
	litecoinAddress = regexp.MustCompile(`^(ltc1[02-9ac-hj-np-z]{11,71}|[LM3][1-9A-HJ-NP-Za-km-z]{26,33})$`)
	solanaAddress   = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	genericAddress  = regexp.MustCompile(`^[A-Za-z0-9:_\-]{8,128}$`)
)

// addressRules maps a network, or a currency when no network is given, to
// the accepted address format.
var addressRules = map[string]*regexp.Regexp{
	"ERC20":   evmAddress,
	"BEP20":   evmAddress,
	"ETH":     evmAddress,
	"BSC":     evmAddress,
	"POLYGON": evmAddress,
	"MATIC":   evmAddress,
	"TRC20":   tronAddress,
	"TRX":     tronAddress,
	"TRON":    tronAddress,
	"BTC":     bitcoinAddress,
	"BITCOIN": bitcoinAddress,
	"LTC":     litecoinAddress,
	"SOL":     solanaAddress,
	"SOLANA":  solanaAddress,
}

// ValidAddress reports whether address is well formed for the
// currency/network pair. Unknown pairs fall back to a permissive format.
func ValidAddress(currency, network, address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	if rule, ok := addressRules[strings.ToUpper(network)]; ok {
		return rule.MatchString(address)
	}
	if rule, ok := addressRules[strings.ToUpper(currency)]; ok {
		return rule.MatchString(address)
	}
	return genericAddress.MatchString(address)
}
