//nolint:staticcheck // too dumb on Db vs. DB
package types

// PayloadVersion is the current feedback engine version. Persisted payloads
// carrying a lower version are stale and must be recomputed.
const PayloadVersion = 2

// EnergyPoint is one sample of the normalized short-term energy curve.
type EnergyPoint struct {
	T float64 `json:"t"` // seconds from track start
	E float64 `json:"e"` // normalized energy, 0..1
}

// Peak is a detected energy peak from the feature extractor.
type Peak struct {
	T        float64 `json:"t"`
	Energy   float64 `json:"energy"`   // 0..1
	Score    float64 `json:"score"`    // 0..1, extractor's peak salience
	Contrast float64 `json:"contrast"` // >= 0, raw values typically 0..0.35
	Sustain  float64 `json:"sustain"`  // 0..1
}

/*
TrackFeatures is the immutable measurement set produced by the upstream
feature extractor, pinned to the exact source bytes via AudioHash.

Optional scalars are pointers: the extractor omits what it could not measure,
and classifiers renormalize their weights over the signals that are present.
*/
type TrackFeatures struct {
	AudioHash string `json:"audio_hash"`

	LufsI         *float64 `json:"lufs_i,omitempty"`         // integrated loudness, LUFS
	TruePeakDbtp  *float64 `json:"true_peak_dbtp,omitempty"` // dBTP
	Lra           *float64 `json:"lra,omitempty"`            // loudness range, LU
	CrestFactorDb *float64 `json:"crest_factor_db,omitempty"`

	TransientDensity    *float64 `json:"transient_density,omitempty"` // 0..1
	TransientDensityStd *float64 `json:"transient_density_std,omitempty"`
	TransientDensityCv  *float64 `json:"transient_density_cv,omitempty"`

	// Micro dynamics (short-term crest over sliding windows).
	ShortTermCrestMean *float64 `json:"short_term_crest_mean,omitempty"`
	ShortTermCrestP95  *float64 `json:"short_term_crest_p95,omitempty"`
	PunchIndex         *float64 `json:"punch_index,omitempty"`

	// EnergyCurve is sorted strictly increasing in T and non-empty for any
	// usable track. Duration is last T minus first T.
	EnergyCurve []EnergyPoint `json:"energy_curve"`
	Peaks       []Peak        `json:"peaks"`

	// RawSections is the extractor's noisy segmentation, stabilized by the
	// engine before any structural classifier sees it.
	RawSections []Section `json:"raw_sections,omitempty"`
}

// Duration returns the curve time span in seconds, 0 when the curve is empty.
func (f *TrackFeatures) Duration() float64 {
	if len(f.EnergyCurve) == 0 {
		return 0
	}

	return f.EnergyCurve[len(f.EnergyCurve)-1].T - f.EnergyCurve[0].T
}

// SectionType labels a structural segment or point event.
type SectionType string

const (
	SectionIntro SectionType = "intro"
	SectionBuild SectionType = "build"
	SectionBreak SectionType = "break"
	SectionOutro SectionType = "outro"
	SectionDrop  SectionType = "drop"
)

// Section is a tagged variant: a range section (intro/build/break/outro,
// End > Start) or a drop point event (T, Impact, ImpactScore; no duration).
type Section struct {
	Type SectionType `json:"type"`

	// Range section fields.
	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`

	// Drop event fields.
	T           float64 `json:"t,omitempty"`
	Impact      float64 `json:"impact,omitempty"`       // 0..1
	ImpactScore float64 `json:"impact_score,omitempty"` // 0..100
}

// IsDrop reports whether the section is a drop point event.
func (s Section) IsDrop() bool {
	return s.Type == SectionDrop
}

// Duration returns End-Start for range sections and 0 for drops.
func (s Section) Duration() float64 {
	if s.IsDrop() {
		return 0
	}

	return s.End - s.Start
}

/// StartTime returns the time a section begins: Start for ranges, T for drops.
func (s Section) StartTime() float64 {
	if s.IsDrop() {
		return s.T
	}

	return s.Start
}

// DensityZones is the proportional distribution of energy samples across
// four bands ([0,0.25), [0.25,0.5), [0.5,0.75), [0.75,1]) plus a 0..100
// entropy score (Shannon entropy of the distribution, normalized by log 4).
type DensityZones struct {
	Distribution [4]float64 `json:"distribution"`
	EntropyScore float64    `json:"entropy_score"`
}

// TensionRelease summarizes the rise/fall character of the energy curve.
// Tension is the fraction of curve steps rising by more than 0.02, Release
// the fraction falling by more than 0.02; Balance is 1 when they match.
type TensionRelease struct {
	Tension float64   `json:"tension"`
	Release float64   `json:"release"`
	Balance float64   `json:"balance"`
	Drops   []Section `json:"drops,omitempty"`
}

// ArcType is the overall dramatic shape of the track.
type ArcType string

const (
	ArcRising       ArcType = "rising_arc"
	ArcPlateau      ArcType = "plateau"
	ArcLateDrop     ArcType = "late_drop"
	ArcEarlyPeak    ArcType = "early_peak"
	ArcCollapse     ArcType = "energy_collapse"
	ArcChaotic      ArcType = "chaotic_distribution"
	ArcInsufficient ArcType = "insufficient_data"
)

// ArcResult contains the energy arc classification.
type ArcResult struct {
	Type       ArcType  `json:"type"`
	Confidence int      `json:"confidence"` // 0..100
	Highlights []string `json:"highlights"`

	StartMean    float64 `json:"start_mean"`
	MidMean      float64 `json:"mid_mean"`
	EndMean      float64 `json:"end_mean"`
	PeakPosition float64 `json:"peak_position"` // 0..1 fraction of duration
	PeakCount    int     `json:"peak_count"`
}

// DropLabel classifies a single drop event.
type DropLabel string

const (
	DropHighImpact   DropLabel = "high_impact_drop"
	DropSolid        DropLabel = "solid_drop"
	DropWeak         DropLabel = "weak_drop"
	DropInsufficient DropLabel = "insufficient_data"
)

// DropScore is the per-drop confidence result, one per input drop event,
// ordered by time.
type DropScore struct {
	T           float64   `json:"t"`
	Label       DropLabel `json:"label"`
	Confidence  float64   `json:"confidence"` // 0..100
	ImpactScore float64   `json:"impact_score"`
	PeakMatched bool      `json:"peak_matched"`
}

// HookWindow is one occurrence of the detected repeating energy window.
type HookWindow struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	MeanEnergy float64 `json:"mean_energy"`
	PeakEnergy float64 `json:"peak_energy"`
}

// HookResult contains the hook detection outcome.
type HookResult struct {
	Detected     bool         `json:"detected"`
	Insufficient bool         `json:"insufficient_data"`
	Confidence   float64      `json:"confidence"`             // 0..100
	PatternType  string       `json:"pattern_type,omitempty"` // energy_repeat | hybrid
	Occurrences  []HookWindow `json:"occurrences,omitempty"`
	Highlights   []string     `json:"highlights,omitempty"`
}

// BalanceResult contains the structural balance index.
type BalanceResult struct {
	Label            string   `json:"label"` // measured | insufficient_data
	Score            float64  `json:"score"` // evenness * 100
	Evenness         float64  `json:"evenness"`
	DominantIndex    int      `json:"dominant_index"`
	DominantSharePct float64  `json:"dominant_share_pct"`
	UnclassifiedPct  float64  `json:"unclassified_pct"`
	Highlights       []string `json:"highlights,omitempty"`
}

// DensityLabel is the arrangement density verdict.
type DensityLabel string

const (
	DensityBalanced     DensityLabel = "balanced"
	DensityOverfilled   DensityLabel = "overfilled"
	DensitySparse       DensityLabel = "too_sparse"
	DensityInsufficient DensityLabel = "insufficient_data"
)

// DensityResult contains the arrangement density verdict.
type DensityResult struct {
	Label      DensityLabel `json:"label"`
	Score      float64      `json:"score"`      // 0..100 imbalance
	Confidence int          `json:"confidence"` // 0..100
	Overfill   float64      `json:"overfill"`   // 0..1
	Sparse     float64      `json:"sparse"`     // 0..1
	Highlights []string     `json:"highlights,omitempty"`
}

// StructureAnalysis is the derived, immutable structural view of a track:
// the stabilized segmentation plus all structural classifier outputs.
type StructureAnalysis struct {
	EnergyCurve    []EnergyPoint  `json:"energy_curve"`
	DensityZones   DensityZones   `json:"density_zones"`
	TensionRelease TensionRelease `json:"tension_release"`
	PrimaryPeak    *Peak          `json:"primary_peak,omitempty"`
	Peaks          []Peak         `json:"peaks,omitempty"`
	Sections       []Section      `json:"sections"`

	Arc                *ArcResult     `json:"arc,omitempty"`
	DropConfidence     []DropScore    `json:"drop_confidence,omitempty"`
	Hook               *HookResult    `json:"hook,omitempty"`
	Balance            *BalanceResult `json:"balance,omitempty"`
	ArrangementDensity *DensityResult `json:"arrangement_density,omitempty"`
}

// DynamicsLabel is the composite dynamics health verdict.
type DynamicsLabel string

const (
	DynamicsHealthy     DynamicsLabel = "healthy"
	DynamicsBorderline  DynamicsLabel = "borderline"
	DynamicsOverLimited DynamicsLabel = "over-limited"
)

// DynamicsFactors echoes the macro-dynamics inputs the score was built from.
type DynamicsFactors struct {
	Lufs  *float64 `json:"lufs,omitempty"`
	Lra   *float64 `json:"lra,omitempty"`
	Crest *float64 `json:"crest,omitempty"`
}

// DynamicsHealth contains the composite dynamics score.
type DynamicsHealth struct {
	Score      int             `json:"score"` // 0..100
	Label      DynamicsLabel   `json:"label"`
	Factors    DynamicsFactors `json:"factors"`
	Highlights []string        `json:"highlights,omitempty"`
}

// HeadroomLevel is the headroom classification tier. Two distinct conditions
// map to critical (at/above ceiling, and near-zero positive headroom); the
// highlight string tells them apart.
type HeadroomLevel string

const (
	HeadroomCritical HeadroomLevel = "critical"
	HeadroomWarn     HeadroomLevel = "warn"
	HeadroomInfo     HeadroomLevel = "info"
)

// HeadroomReport classifies pre-encode headroom from the source true peak.
type HeadroomReport struct {
	TruePeakDbtp float64       `json:"true_peak_dbtp"`
	HeadroomDb   float64       `json:"headroom_db"` // 0 - true peak
	Level        HeadroomLevel `json:"level"`
	Highlight    string        `json:"highlight"`
}

// TruePeakMeasurement is the re-measured peak profile of a decoded PCM
// stream.
type TruePeakMeasurement struct {
	TruePeakDbtp float64 `json:"true_peak_dbtp"`
	SamplePeakDb float64 `json:"sample_peak_db"`
	OversCount   uint64  `json:"overs_count"`
	OversMaxDb   float64 `json:"overs_max_db"`
	Frames       uint64  `json:"frames"`
}

// DistortionRisk is the per-codec post-encode risk label.
type DistortionRisk string

const (
	RiskHigh     DistortionRisk = "high"
	RiskModerate DistortionRisk = "moderate"
	RiskLow      DistortionRisk = "low"
)

// CodecResult is one encode->decode->re-measure round trip outcome.
type CodecResult struct {
	Codec            string         `json:"codec"` // aac | mp3
	BitrateKbps      int            `json:"bitrate_kbps"`
	PostTruePeakDbtp float64        `json:"post_true_peak_dbtp"`
	OversCount       uint64         `json:"overs_count"`
	DistortionRisk   DistortionRisk `json:"distortion_risk"`
}

// CodecSimulation aggregates both codec round trips. It is absent from the
// payload entirely (null) when either codec path failed.
type CodecSimulation struct {
	Results           []CodecResult `json:"results"`
	WorstPostPeakDbtp float64       `json:"worst_post_peak_dbtp"`
	PostHeadroomDb    float64       `json:"post_headroom_db"`
	PostLevel         HeadroomLevel `json:"post_level"`
	Tip               string        `json:"tip,omitempty"`
}

// Tone is the qualitative per-platform normalization verdict.
type Tone string

const (
	ToneGood     Tone = "good"
	ToneWarn     Tone = "warn"
	ToneCritical Tone = "critical"
	ToneNeutral  Tone = "neutral"
)

// PlatformRisk is the normalization outcome for one streaming platform.
type PlatformRisk struct {
	Platform      string  `json:"platform"`
	TargetLufs    float64 `json:"target_lufs"`
	DesiredGainDb float64 `json:"desired_gain_db"`
	AppliedGainDb float64 `json:"applied_gain_db"`
	Tone          Tone    `json:"tone"`
}

// StreamingRisk aggregates per-platform results into an overall label.
type StreamingRisk struct {
	Platforms []PlatformRisk `json:"platforms"`
	Overall   string         `json:"overall"` // HIGH | MODERATE | LOW
}

// Interval is a closed time range in seconds, used for true-peak-over
// event reporting.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// PayloadEvents carries discrete measurement events attached to the payload.
type PayloadEvents struct {
	TruePeakOvers     []Interval `json:"true_peak_overs"`
	TruePeakOverCount int        `json:"true_peak_over_count"`
}

// PayloadMetrics echoes the headline scalar measurements into the payload.
type PayloadMetrics struct {
	LufsI            *float64 `json:"lufs_i,omitempty"`
	TruePeakDbtp     *float64 `json:"true_peak_dbtp,omitempty"`
	Lra              *float64 `json:"lra,omitempty"`
	CrestFactorDb    *float64 `json:"crest_factor_db,omitempty"`
	TransientDensity *float64 `json:"transient_density,omitempty"`
	DurationSec      float64  `json:"duration_sec"`
}

/// FeedbackPayload is the persisted artifact: versioned, keyed by
// (queue_id, user_id), pinned to the audio hash it was computed from.
// Exactly one row exists per key; the orchestrator replaces it in place
// whenever staleness is detected and never deletes it.
type FeedbackPayload struct {
	PayloadVersion int    `json:"payload_version"`
	QueueID        string `json:"queue_id"`
	UserID         string `json:"user_id"`
	AudioHash      string `json:"audio_hash"`

	Metrics         PayloadMetrics     `json:"metrics"`
	DynamicsHealth  *DynamicsHealth    `json:"dynamics_health,omitempty"`
	Structure       *StructureAnalysis `json:"structure,omitempty"`
	Events          PayloadEvents      `json:"events"`
	Headroom        *HeadroomReport    `json:"headroom,omitempty"`
	CodecSimulation *CodecSimulation   `json:"codec_simulation"` // nullable when simulation failed
	Streaming       *StreamingRisk     `json:"streaming,omitempty"`
	Recommendations []string           `json:"recommendations"`
}
