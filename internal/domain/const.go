package domain

const (
	RequesterIdCtxKey = "mb-requesterId"
)

const (
	RequesterIdHeader = "mb-requester"
)

const (
	MaxURLLength     = 512
	MaxTitleLength   = 512
	MaxContentLength = 512
	MaxMemoLength    = 256
	MaxBodyLength    = 32768
	MaxReviewIDLen   = 64

	// Minimum bill price in MIS units (1.0000 MIS).
	MinBillPrice int64 = 10000

	DailyLikeQuota uint8 = 3

	RankedHospitals = 16
	RankedReviews   = 16

	// Reviews below this many likes are never paid.
	MinRewardLikes int32 = 100

	ReviewRewardBase uint64 = 10000
	ReviewRewardStep uint64 = 500

	// 1,000,000.0000 MIS per ranked hospital.
	HospitalReward int64 = 10000000000

	ProtocolFeePercent uint64 = 10
)

type Tier uint8

const (
	TierBaby     Tier = 0
	TierBronze   Tier = 5
	TierSilver   Tier = 10
	TierGold     Tier = 15
	TierPlatinum Tier = 20
	TierDiamond  Tier = 25
)

func (t Tier) String() string {
	switch t {
	case TierBaby:
		return "BABY"
	case TierBronze:
		return "BRONZE"
	case TierSilver:
		return "SILVER"
	case TierGold:
		return "GOLD"
	case TierPlatinum:
		return "PLATINUM"
	case TierDiamond:
		return "DIAMOND"
	default:
		return "UNKNOWN"
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TierOf maps a point balance onto its tier.
func TierOf(point uint64) Tier {
	switch {
	case point < 10_000:
		return TierBaby
	case point < 100_000:
		return TierBronze
	case point < 1_000_000:
		return TierSilver
	case point < 10_000_000:
		return TierGold
	case point < 100_000_000:
		return TierPlatinum
	default:
		return TierDiamond
	}
}

// TierBonus is the extra reward a tier earns on top of amount, in percent of the tier value.
func TierBonus(amount uint64, tier Tier) uint64 {
	return PercentOf(amount, uint64(tier))
}

type ActivityKind int

const (
	ActivityReview ActivityKind = iota
	ActivityEMRSale
	ActivityVisitor
	ActivityLike
)

func (k ActivityKind) String() string {
	switch k {
	case ActivityReview:
		return "review"
	case ActivityEMRSale:
		return "emr_sale"
	case ActivityVisitor:
		return "visitor"
	case ActivityLike:
		return "like"
	default:
		return "unknown"
	}
}
