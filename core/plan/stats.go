package plan

import "time"

// Conditions are the sky conditions a plan was built for.
type Conditions struct {
	CloudCover    string `json:"cc" yaml:"cc"`
	ImageQuality  string `json:"iq" yaml:"iq"`
	SkyBackground string `json:"sb" yaml:"sb"`
	WaterVapor    string `json:"wv" yaml:"wv"`
}

// NightStats summarizes a finished plan.
type NightStats struct {
	TimeLoss   time.Duration `json:"time_loss"`
	PlanScore  float64       `json:"plan_score"`
	Conditions Conditions    `json:"plan_conditions"`
	ToOs       int           `json:"n_toos"`
	// Completion is the fraction of the planned atoms of each band that
	// the plan schedules.
	Completion map[int]float64 `json:"completion_fraction"`
}
