package models

import "time"

// SizeTier names a candidate system size.
type SizeTier string

const (
	TierSmall  SizeTier = "small"
	TierMedium SizeTier = "medium"
	TierLarge  SizeTier = "large"
)

// Tiers returns the size tiers in comparison order.
func Tiers() []SizeTier {
	return []SizeTier{TierSmall, TierMedium, TierLarge}
}

// OptionStatus reports whether a SizingOption could be fully priced.
type OptionStatus string

const (
	StatusOK     OptionStatus = "ok"
	StatusFailed OptionStatus = "failed"
)

// MonthlyBill is one month of the projected post-install utility bill.
type MonthlyBill struct {
	Month            int     `json:"month"`
	UsageKwh         float64 `json:"usage_kwh"`
	ProductionKwh    float64 `json:"production_kwh"`
	NetUsageKwh      float64 `json:"net_usage_kwh"`
	ProjectedBillUsd float64 `json:"projected_bill_usd"`
}

// SizingOption is one candidate system with its derived economics.
type SizingOption struct {
	Size                SizeTier `json:"size"`
	TargetOffsetPercent float64  `json:"target_offset_percent"`
	TargetKw            float64  `json:"target_kw"`
	SolarKw             float64  `json:"solar_kw"`
	PanelCount          int      `json:"panel_count"`
	PanelWattage        float64  `json:"panel_wattage"`
	Clamped             bool     `json:"clamped"`
	BatteryKwh          float64  `json:"battery_kwh"`
	InverterKw          float64  `json:"inverter_kw"`
	AnnualUsageKwh      float64  `json:"annual_usage_kwh"`

	Production *ProductionEstimate `json:"production,omitempty"`
	CashMetrics
	MonthlyBills []MonthlyBill `json:"monthly_bills,omitempty"`

	Status OptionStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
	Issues []Issue      `json:"issues,omitempty"`
}

// AnnualProductionKwh returns the estimated first-year yield, or zero when
// the estimate is missing.
func (o SizingOption) AnnualProductionKwh() float64 {
	if o.Production == nil {
		return 0
	}
	return o.Production.AnnualProductionKwh
}

// OffsetPercentage is recomputed from production and usage on every call.
func (o SizingOption) OffsetPercentage() float64 {
	return OffsetPercentage(o.AnnualProductionKwh(), o.AnnualUsageKwh)
}

// Viable reports whether the option was fully priced.
func (o SizingOption) Viable() bool {
	return o.Status == StatusOK
}

// Selection explains a recommendation.
type Selection struct {
	Winner        string             `json:"winner"`
	Score         float64            `json:"score"`
	RunnerUp      string             `json:"runner_up,omitempty"`
	RunnerUpScore float64            `json:"runner_up_score,omitempty"`
	Margin        float64            `json:"margin"`
	Scores        map[string]float64 `json:"scores"`
}

// SizingComparison holds exactly three SizingOptions plus the recommended tier.
type SizingComparison struct {
	ID                string         `json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	Usage             UsageProfile   `json:"usage"`
	Location          Location       `json:"location"`
	Options           []SizingOption `json:"options"`
	RecommendedOption SizeTier       `json:"recommended_option,omitempty"`
	Selection         *Selection     `json:"selection,omitempty"`
	Issues            []Issue        `json:"issues,omitempty"`
}

// Option returns the option for a tier.
func (c *SizingComparison) Option(tier SizeTier) (SizingOption, bool) {
	for _, o := range c.Options {
		if o.Size == tier {
			return o, true
		}
	}
	return SizingOption{}, false
}
