package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/export"
	"github.com/segyhp/installment-engine/internal/repository"
	"github.com/segyhp/installment-engine/pkg/calendar"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

// ReportService exports quinzena workbooks.
type ReportService struct {
	InstallmentRepo repository.InstallmentRepository
	logger          *slog.Logger
}

func NewReportService(installmentRepo repository.InstallmentRepository, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{InstallmentRepo: installmentRepo, logger: logger}
}

// PeriodInstallments lists the installments reported in period.
func (s *ReportService) PeriodInstallments(ctx context.Context, period calendar.PeriodDate) ([]*domain.Installment, error) {
	installments, err := s.InstallmentRepo.GetByPeriod(ctx, period)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return installments, nil
}

// ExportPeriod writes the workbook of period to w.
func (s *ReportService) ExportPeriod(ctx context.Context, period calendar.PeriodDate, w io.Writer) error {
	installments, err := s.PeriodInstallments(ctx, period)
	if err != nil {
		return err
	}
	if err := export.Write(w, installments); err != nil {
		return customError.WrapExportError(err)
	}
	return nil
}

// ExportPeriodToDir saves the workbook of period as
// dir/quinzena_YYYY-MM-DD.xlsx and returns its path.
func (s *ReportService) ExportPeriodToDir(ctx context.Context, period calendar.PeriodDate, dir string) (string, error) {
	installments, err := s.PeriodInstallments(ctx, period)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", customError.WrapExportError(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("quinzena_%s.xlsx", period))
	if err := export.Save(path, installments); err != nil {
		return "", customError.WrapExportError(err)
	}

	s.logger.Info("quinzena exported",
		slog.String("period", period.String()),
		slog.String("path", path),
		slog.Int("installments", len(installments)),
	)
	return path, nil
}
