package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/infra/database/models"
	"github.com/totegamma/misblock/internal/usecase"
)

const configRowID int64 = 1

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Transaction(ctx context.Context, fn func(tx usecase.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{db: tx})
	})
}

type ledgerTx struct {
	db *gorm.DB
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(resource)
	}
	return err
}

func (t *ledgerTx) LockConfig(defaults domain.LedgerConfig) (domain.LedgerConfig, error) {
	var m models.LedgerConfig
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", configRowID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		initial := configToModel(defaults)
		err = t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&initial).Error
		if err != nil {
			return domain.LedgerConfig{}, err
		}
		err = t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", configRowID).
			Take(&m).Error
	}
	if err != nil {
		return domain.LedgerConfig{}, err
	}
	return configFromModel(m), nil
}

func (t *ledgerTx) GetConfig() (domain.LedgerConfig, error) {
	var m models.LedgerConfig
	err := t.db.Where("id = ?", configRowID).Take(&m).Error
	if err != nil {
		return domain.LedgerConfig{}, notFound(err, "config")
	}
	return configFromModel(m), nil
}

func (t *ledgerTx) SaveConfig(cfg domain.LedgerConfig) error {
	m := configToModel(cfg)
	return t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func (t *ledgerTx) GetCustomer(owner string) (domain.Customer, error) {
	var m models.Customer
	err := t.db.Where("owner = ?", owner).Take(&m).Error
	if err != nil {
		return domain.Customer{}, notFound(err, "customer "+owner)
	}
	return customerFromModel(m), nil
}

func (t *ledgerTx) SaveCustomer(c domain.Customer) error {
	m := customerToModel(c)
	return t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func (t *ledgerTx) SumCustomerPoints() (uint64, error) {
	var sum int64
	err := t.db.Model(&models.Customer{}).
		Select("COALESCE(SUM(point), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return uint64(sum), nil
}

func (t *ledgerTx) AppendPointEntry(e domain.PointEntry) error {
	return t.db.Create(&models.PointEntry{
		Owner:        e.Owner,
		Delta:        e.Delta,
		BalanceAfter: int64(e.BalanceAfter),
		Reason:       string(e.Reason),
		Memo:         e.Memo,
		CreatedAt:    e.CreatedAt,
	}).Error
}

func (t *ledgerTx) ListPointEntries(owner string, limit int) ([]domain.PointEntry, error) {
	var rows []models.PointEntry
	err := t.db.Where("owner = ?", owner).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]domain.PointEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, pointEntryFromModel(row))
	}
	return entries, nil
}

func (t *ledgerTx) HasSettlement(customer, hospital string) (bool, error) {
	var count int64
	err := t.db.Model(&models.Settlement{}).
		Where("customer = ? AND hospital = ?", customer, hospital).
		Count(&count).Error
	return count > 0, err
}

func (t *ledgerTx) AddSettlement(customer, hospital string) error {
	return t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Settlement{
		Customer: customer,
		Hospital: hospital,
	}).Error
}

func (t *ledgerTx) RemoveSettlement(customer, hospital string) error {
	return t.db.Where("customer = ? AND hospital = ?", customer, hospital).
		Delete(&models.Settlement{}).Error
}

func (t *ledgerTx) GetHospital(owner string) (domain.Hospital, error) {
	var m models.Hospital
	err := t.db.Where("owner = ?", owner).Take(&m).Error
	if err != nil {
		return domain.Hospital{}, notFound(err, "hospital "+owner)
	}
	return hospitalFromModel(m), nil
}

func (t *ledgerTx) SaveHospital(h domain.Hospital) error {
	m := hospitalToModel(h)
	return t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func (t *ledgerTx) TopHospitals(limit int) ([]domain.Hospital, error) {
	var rows []models.Hospital
	err := t.db.Where("service_weight > 0").
		Order("service_weight DESC").
		Order("owner ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	hospitals := make([]domain.Hospital, 0, len(rows))
	for _, row := range rows {
		hospitals = append(hospitals, hospitalFromModel(row))
	}
	return hospitals, nil
}

func (t *ledgerTx) GetReview(id string) (domain.Review, error) {
	var m models.Review
	err := t.db.Where("id = ?", id).Take(&m).Error
	if err != nil {
		return domain.Review{}, notFound(err, "review "+id)
	}
	return reviewFromModel(m), nil
}

func (t *ledgerTx) CreateReview(r domain.Review) error {
	m := reviewToModel(r)
	err := t.db.Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.DuplicateKey("review %s already exists", r.ID)
	}
	return err
}

func (t *ledgerTx) SaveReview(r domain.Review) error {
	m := reviewToModel(r)
	return t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func (t *ledgerTx) TopReviews(limit int, minLikes int32) ([]domain.Review, error) {
	var rows []models.Review
	err := t.db.Where("is_expired = ? AND likes >= ?", false, minLikes).
		Order("likes DESC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, reviewFromModel(row))
	}
	return reviews, nil
}

func (t *ledgerTx) GetBill(id string) (domain.Bill, error) {
	var m models.Bill
	err := t.db.Where("id = ?", id).Take(&m).Error
	if err != nil {
		return domain.Bill{}, notFound(err, "bill "+id)
	}
	return billFromModel(m), nil
}

func (t *ledgerTx) CreateBill(b domain.Bill) error {
	m := billToModel(b)
	err := t.db.Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.DuplicateKey("bill %s already exists", b.ID)
	}
	return err
}

func (t *ledgerTx) SaveBill(b domain.Bill) error {
	m := billToModel(b)
	return t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func (t *ledgerTx) EnqueueTransfer(l domain.TransferLog) (bool, error) {
	m := transferToModel(l)
	result := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(&m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (t *ledgerTx) MarkTransferSent(key string, at time.Time) error {
	return t.db.Model(&models.TokenTransfer{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":     string(domain.TransferSent),
			"sent_at":    at,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": "",
		}).Error
}

func (t *ledgerTx) MarkTransferFailed(key string, reason string) error {
	return t.db.Model(&models.TokenTransfer{}).
		Where("idempotency_key = ? AND status = ?", key, string(domain.TransferPending)).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
}

func (t *ledgerTx) ListPendingTransfers(limit int) ([]domain.TransferLog, error) {
	var rows []models.TokenTransfer
	err := t.db.Where("status = ?", string(domain.TransferPending)).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return transfersFromModels(rows), nil
}

func (t *ledgerTx) ListTransferLogs(limit int) ([]domain.TransferLog, error) {
	var rows []models.TokenTransfer
	err := t.db.Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return transfersFromModels(rows), nil
}
