package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

// ReceiptsDir is where receipts live relative to an install prefix.
const ReceiptsDir = "var/tap/receipts"

type ReceiptFileAdapter struct{}

func NewReceiptFileAdapter() ReceiptFileAdapter {
	return ReceiptFileAdapter{}
}

func (a ReceiptFileAdapter) WriteReceipt(prefix string, receipt types.Receipt) error {
	path, err := receiptPath(prefix, receipt.Name)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(receipt)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal receipt").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create receipts directory").
			WithCause(err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write receipt").
			WithCause(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write receipt").
			WithCause(err)
	}
	return nil
}

func (a ReceiptFileAdapter) ReadReceipt(prefix string, name string) (types.Receipt, bool, error) {
	path, err := receiptPath(prefix, name)
	if err != nil {
		return types.Receipt{}, false, err
	}
	receipt, err := readReceiptFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.Receipt{}, false, nil
	}
	if err != nil {
		return types.Receipt{}, false, err
	}
	return receipt, true, nil
}

func (a ReceiptFileAdapter) ListReceipts(prefix string) ([]types.Receipt, error) {
	dir := filepath.Join(prefix, filepath.FromSlash(ReceiptsDir))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read receipts directory").
			WithCause(err)
	}
	receipts := make([]types.Receipt, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		receipt, err := readReceiptFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].Name < receipts[j].Name
	})
	return receipts, nil
}

func (a ReceiptFileAdapter) DeleteReceipt(prefix string, name string) error {
	path, err := receiptPath(prefix, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to delete receipt").
			WithCause(err)
	}
	return nil
}

func readReceiptFile(path string) (types.Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Receipt{}, err
	}
	var receipt types.Receipt
	if err := yaml.Unmarshal(data, &receipt); err != nil {
		return types.Receipt{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid receipt format").
			WithCause(err)
	}
	return receipt, nil
}

func receiptPath(prefix string, name string) (string, error) {
	normalized := shared.NormalizePackageName(name)
	if strings.TrimSpace(prefix) == "" || normalized == "" || strings.ContainsAny(normalized, `/\`) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("receipt requires a prefix and a package name")
	}
	return filepath.Join(prefix, filepath.FromSlash(ReceiptsDir), normalized+".yaml"), nil
}

var _ ports.ReceiptPort = ReceiptFileAdapter{}
