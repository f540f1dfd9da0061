package repository

import (
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/infra/database/models"
)

func configToModel(c domain.LedgerConfig) models.LedgerConfig {
	return models.LedgerConfig{
		ID:               configRowID,
		TotalPointSupply: int64(c.TotalPointSupply),
		MisByPoint:       int64(c.MisByPoint),
		LikeReward:       int64(c.LikeReward),
		VerificationKey:  c.VerificationKey,
		LastRewardsEpoch: c.LastRewardsEpoch,
	}
}

func configFromModel(m models.LedgerConfig) domain.LedgerConfig {
	return domain.LedgerConfig{
		TotalPointSupply: uint64(m.TotalPointSupply),
		MisByPoint:       uint64(m.MisByPoint),
		LikeReward:       uint64(m.LikeReward),
		VerificationKey:  m.VerificationKey,
		LastRewardsEpoch: m.LastRewardsEpoch,
	}
}

func customerToModel(c domain.Customer) models.Customer {
	return models.Customer{
		Owner:          c.Owner,
		Point:          int64(c.Point),
		Tier:           int16(c.Tier),
		RemainingLikes: int16(c.RemainingLikes),
		LastLikeAt:     c.LastLikeAt,
		CreatedAt:      c.CreatedAt,
	}
}

func customerFromModel(m models.Customer) domain.Customer {
	return domain.Customer{
		Owner:          m.Owner,
		Point:          uint64(m.Point),
		Tier:           domain.Tier(m.Tier),
		RemainingLikes: uint8(m.RemainingLikes),
		LastLikeAt:     m.LastLikeAt,
		CreatedAt:      m.CreatedAt,
	}
}

func hospitalToModel(h domain.Hospital) models.Hospital {
	return models.Hospital{
		Owner:            h.Owner,
		URL:              h.URL,
		ServiceWeight:    h.ServiceWeight,
		ReviewCount:      int64(h.ReviewCount),
		EMRSales:         int64(h.EMRSales),
		ReviewVisitors:   int64(h.ReviewVisitors),
		TotalReviewsLike: int64(h.TotalReviewsLike),
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

func hospitalFromModel(m models.Hospital) domain.Hospital {
	return domain.Hospital{
		Owner:            m.Owner,
		URL:              m.URL,
		ServiceWeight:    m.ServiceWeight,
		ReviewCount:      uint64(m.ReviewCount),
		EMRSales:         uint64(m.EMRSales),
		ReviewVisitors:   uint64(m.ReviewVisitors),
		TotalReviewsLike: uint64(m.TotalReviewsLike),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func reviewToModel(r domain.Review) models.Review {
	return models.Review{
		ID:        r.ID,
		Owner:     r.Owner,
		Hospital:  r.Hospital,
		Title:     r.Title,
		Body:      r.Body,
		IsExpired: r.IsExpired,
		Likes:     r.Likes,
		CreatedAt: r.CreatedAt,
	}
}

func reviewFromModel(m models.Review) domain.Review {
	return domain.Review{
		ID:        m.ID,
		Owner:     m.Owner,
		Hospital:  m.Hospital,
		Title:     m.Title,
		Body:      m.Body,
		IsExpired: m.IsExpired,
		Likes:     m.Likes,
		CreatedAt: m.CreatedAt,
	}
}

func billToModel(b domain.Bill) models.Bill {
	return models.Bill{
		ID:        b.ID,
		Customer:  b.Customer,
		Hospital:  b.Hospital,
		Content:   b.Content,
		Price:     b.Price,
		PaidAt:    b.PaidAt,
		PaidWith:  string(b.PaidWith),
		ReviewID:  b.ReviewID,
		CreatedAt: b.CreatedAt,
	}
}

func billFromModel(m models.Bill) domain.Bill {
	return domain.Bill{
		ID:        m.ID,
		Customer:  m.Customer,
		Hospital:  m.Hospital,
		Content:   m.Content,
		Price:     m.Price,
		PaidAt:    m.PaidAt,
		PaidWith:  domain.PaymentMethod(m.PaidWith),
		ReviewID:  m.ReviewID,
		CreatedAt: m.CreatedAt,
	}
}

func pointEntryFromModel(m models.PointEntry) domain.PointEntry {
	return domain.PointEntry{
		ID:           m.ID,
		Owner:        m.Owner,
		Delta:        m.Delta,
		BalanceAfter: uint64(m.BalanceAfter),
		Reason:       domain.PointReason(m.Reason),
		Memo:         m.Memo,
		CreatedAt:    m.CreatedAt,
	}
}

func transferToModel(l domain.TransferLog) models.TokenTransfer {
	return models.TokenTransfer{
		Key:       l.Key,
		From:      l.From,
		To:        l.To,
		Quantity:  l.Quantity,
		Memo:      l.Memo,
		Status:    string(l.Status),
		Attempts:  l.Attempts,
		LastError: l.LastError,
		SentAt:    l.SentAt,
		CreatedAt: l.CreatedAt,
	}
}

func transfersFromModels(rows []models.TokenTransfer) []domain.TransferLog {
	logs := make([]domain.TransferLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, domain.TransferLog{
			ID:        row.ID,
			Key:       row.Key,
			From:      row.From,
			To:        row.To,
			Quantity:  row.Quantity,
			Memo:      row.Memo,
			Status:    domain.TransferStatus(row.Status),
			Attempts:  row.Attempts,
			LastError: row.LastError,
			SentAt:    row.SentAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return logs
}
