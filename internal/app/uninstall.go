package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

func (s Service) Uninstall(ctx context.Context, req UninstallRequest) (UninstallResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return UninstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("formula name is required")
	}
	prefix, err := requirePrefix(req.Prefix)
	if err != nil {
		return UninstallResult{}, err
	}
	if s.Lock != nil {
		unlock, err := s.Lock.Lock(ctx, prefix)
		if err != nil {
			return UninstallResult{}, err
		}
		defer func() {
			if err := unlock(); err != nil {
				log.Warn().Err(err).Str("prefix", prefix).Msg("failed to release prefix lock")
			}
		}()
	}
	receipt, found, err := s.Receipts.ReadReceipt(prefix, name)
	if err != nil {
		return UninstallResult{}, err
	}
	if !found {
		return UninstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("formula is not installed")
	}
	if err := s.Installer.Remove(receipt.Files); err != nil {
		return UninstallResult{}, err
	}
	if err := s.Receipts.DeleteReceipt(prefix, name); err != nil {
		return UninstallResult{}, err
	}
	log.Ctx(ctx).Info().Str("formula", receipt.Name).Str("version", receipt.Version).Int("files", len(receipt.Files)).Msg("formula uninstalled")
	return UninstallResult{Name: receipt.Name, Version: receipt.Version, Removed: len(receipt.Files)}, nil
}

func (s Service) List(_ context.Context, req ListRequest) (ListResult, error) {
	prefix, err := requirePrefix(req.Prefix)
	if err != nil {
		return ListResult{}, err
	}
	receipts, err := s.Receipts.ListReceipts(prefix)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Receipts: receipts}, nil
}
