package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_TENANT                 = "tenant"
	UUID_PREFIX_PAYER                  = "payer"
	UUID_PREFIX_PLAN                   = "plan"
	UUID_PREFIX_SUBSCRIPTION           = "subs"
	UUID_PREFIX_COMMISSION_AGREEMENT   = "agr"
	UUID_PREFIX_COMMISSION_TRANSACTION = "comm"
	UUID_PREFIX_INVOICE                = "inv"
	UUID_PREFIX_INVOICE_LINE_ITEM      = "inv_line"
)
