package ports

import "slack-thread-dump-tap/internal/types"

type ReceiptPort interface {
	WriteReceipt(prefix string, receipt types.Receipt) error
	ReadReceipt(prefix string, name string) (types.Receipt, bool, error)
	ListReceipts(prefix string) ([]types.Receipt, error)
	DeleteReceipt(prefix string, name string) error
}
