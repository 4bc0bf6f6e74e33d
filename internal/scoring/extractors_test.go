package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-reputation-lab/internal/domain"
)

const (
	maliciousAddr = "0x2222222222222222222222222222222222222222"
	benignAddr    = "0x3333333333333333333333333333333333333333"
	mixerAsset    = "0x4444444444444444444444444444444444444444"
)

func history(records ...*domain.TransactionRecord) *domain.WalletHistory {
	return &domain.WalletHistory{Address: testAddress, Records: records}
}

func emptyHistory() *domain.WalletHistory {
	return &domain.WalletHistory{Address: testAddress}
}

func benignLabels() map[string]domain.AddressLabel {
	return map[string]domain.AddressLabel{
		benignAddr: {Address: benignAddr, Kind: domain.LabelBenign, Source: "test", Confidence: 1},
	}
}

// --- Longevity ---

func TestLongevity_EmptyHistory(t *testing.T) {
	s := extractLongevity(emptyHistory(), 1_700_000_000, LongevityParams{SaturationDays: 730})

	assert.Equal(t, 0.0, s.Value)
	assert.Equal(t, "no observed activity", s.Rationale)
	assert.False(t, s.Degraded)
}

func TestLongevity_SaturatesPastThreshold(t *testing.T) {
	p := LongevityParams{SaturationDays: 730}
	ref := int64(1_700_000_000)

	// Three years old: past the two-year ramp, clamps to 100.
	threeYears := rec("0xa", 0, ref-3*365*86400)
	s := extractLongevity(history(threeYears), ref, p)
	assert.Equal(t, 100.0, s.Value)

	// One year old: on the ramp, strictly between 0 and 100.
	oneYear := rec("0xb", 0, ref-365*86400)
	s = extractLongevity(history(oneYear), ref, p)
	want := 100.0 * math.Log(365+1) / math.Log(731)
	assert.InDelta(t, want, s.Value, 0.01)
}

func TestLongevity_MonotonicInAge(t *testing.T) {
	p := LongevityParams{SaturationDays: 730}
	ref := int64(1_700_000_000)

	prev := -1.0
	for days := int64(0); days <= 1000; days += 25 {
		s := extractLongevity(history(rec("0xa", 0, ref-days*86400)), ref, p)
		require.GreaterOrEqual(t, s.Value, prev, "longevity decreased at age %d days", days)
		prev = s.Value
	}
}

func TestLongevity_FutureFirstRecordClampsToZeroAge(t *testing.T) {
	p := LongevityParams{SaturationDays: 730}
	ref := int64(1_700_000_000)

	s := extractLongevity(history(rec("0xa", 0, ref+86400)), ref, p)
	assert.Equal(t, 0.0, s.Value)
}

// --- Activity ---

func TestActivity_EmptyHistory(t *testing.T) {
	s := extractActivity(emptyHistory(), DefaultConfig().Activity)
	assert.Equal(t, 0.0, s.Value)
	assert.Equal(t, "no observed activity", s.Rationale)
}

func TestActivity_SingleTransaction(t *testing.T) {
	p := DefaultConfig().Activity
	r := rec("0xa", 0, 1000)
	r.Value = 0

	s := extractActivity(history(r), p)

	// One tx, no volume, no observable regularity: only the count term.
	want := 100.0 * p.CountWeight * (math.Log10(2) / math.Log10(p.CountSaturation+1))
	assert.InDelta(t, want, s.Value, 0.01)
}

func TestActivity_CountSaturation(t *testing.T) {
	p := ActivityParams{
		CountWeight: 1, RegularityWeight: 0, VolumeWeight: 0,
		CountSaturation: 10, VolumeSaturation: 10,
	}

	// Perfectly regular wallet far past the count saturation point.
	records := make([]*domain.TransactionRecord, 200)
	for i := range records {
		records[i] = rec("0xa", i, int64(1000+i*3600))
	}

	s := extractActivity(history(records...), p)
	assert.Equal(t, 100.0, s.Value)
}

func TestActivity_RegularIntervalsScoreHigherThanBursts(t *testing.T) {
	p := ActivityParams{
		CountWeight: 0, RegularityWeight: 1, VolumeWeight: 0,
		CountSaturation: 5000, VolumeSaturation: 10000,
	}

	regular := make([]*domain.TransactionRecord, 10)
	for i := range regular {
		regular[i] = rec("0xr", i, int64(1000+i*86400))
	}

	// Bursty: nine transactions in one minute, then one a year later.
	bursty := make([]*domain.TransactionRecord, 10)
	for i := 0; i < 9; i++ {
		bursty[i] = rec("0xb", i, int64(1000+i*6))
	}
	bursty[9] = rec("0xb", 9, int64(1000+365*86400))

	sr := extractActivity(history(regular...), p)
	sb := extractActivity(history(bursty...), p)
	assert.Greater(t, sr.Value, sb.Value)
	assert.InDelta(t, 100.0, sr.Value, 0.01) // zero dispersion
}

// --- Diversity ---

func TestDiversity_EmptyHistory(t *testing.T) {
	s := extractDiversity(emptyHistory(), DiversityParams{Cap: 20})
	assert.Equal(t, 0.0, s.Value)
}

func TestDiversity_CountsDistinctIdentifiersOnce(t *testing.T) {
	p := DiversityParams{Cap: 20}

	a := rec("0xa", 0, 1000)
	a.Protocol = "0xproto1"
	a.Asset = "0xtoken1"
	b := rec("0xb", 0, 2000)
	b.Protocol = "0xproto1" // repeat protocol
	b.Asset = "0xtoken1"    // repeat asset
	c := rec("0xc", 0, 3000)
	c.Protocol = "0xtoken1" // token contract seen as protocol: still one identifier
	c.Asset = "ETH"

	s := extractDiversity(history(a, b, c), p)

	// Distinct: proto1, token1, ETH.
	assert.InDelta(t, 100.0*3.0/20.0, s.Value, 0.001)
}

func TestDiversity_SaturatesAtCap(t *testing.T) {
	p := DiversityParams{Cap: 5}

	records := make([]*domain.TransactionRecord, 12)
	for i := range records {
		r := rec("0xa", i, int64(1000+i))
		r.Protocol = string(rune('a' + i))
		r.Asset = ""
		records[i] = r
	}

	s := extractDiversity(history(records...), p)
	assert.Equal(t, 100.0, s.Value)
}

// --- General Risk ---

func TestGeneralRisk_DegradedWithoutLabels(t *testing.T) {
	p := RiskParams{NeutralDefault: 50}
	h := history(rec("0xa", 0, 1000))

	for _, labels := range []map[string]domain.AddressLabel{nil, {}} {
		s := extractGeneralRisk(h, labels, p)
		assert.Equal(t, 50.0, s.Value)
		assert.True(t, s.Degraded)
		assert.Contains(t, s.Rationale, "unavailable")
	}
}

func TestGeneralRisk_NotDegradedWithLabels(t *testing.T) {
	p := RiskParams{NeutralDefault: 50}
	h := history(rec("0xa", 0, 1000))

	s := extractGeneralRisk(h, benignLabels(), p)
	assert.False(t, s.Degraded)
	assert.Equal(t, 100.0, s.Value)
}

func TestGeneralRisk_PenaltyProportionalToFlaggedShare(t *testing.T) {
	p := RiskParams{NeutralDefault: 50}
	labels := map[string]domain.AddressLabel{
		maliciousAddr: {Address: maliciousAddr, Kind: domain.LabelMalicious, Source: "test", Confidence: 1},
	}

	// 40% of interactions, by count and by volume, route through the
	// flagged counterparty.
	var records []*domain.TransactionRecord
	for i := 0; i < 10; i++ {
		r := rec("0xa", i, int64(1000+i))
		if i < 4 {
			r.Counterparty = maliciousAddr
		}
		records = append(records, r)
	}

	s := extractGeneralRisk(history(records...), labels, p)
	assert.InDelta(t, 60.0, s.Value, 0.001) // 100 - 100*0.4
	assert.False(t, s.Degraded)

	// Reproducible across runs.
	again := extractGeneralRisk(history(records...), labels, p)
	assert.Equal(t, s, again)
}

func TestGeneralRisk_MonotonicInFlaggedInteractions(t *testing.T) {
	p := RiskParams{NeutralDefault: 50}
	labels := map[string]domain.AddressLabel{
		maliciousAddr: {Address: maliciousAddr, Kind: domain.LabelMalicious, Source: "test", Confidence: 1},
	}

	records := []*domain.TransactionRecord{rec("0xa", 0, 1000), rec("0xb", 0, 2000)}
	prev := extractGeneralRisk(history(records...), labels, p).Value

	for i := 0; i < 20; i++ {
		bad := rec("0xbad", i, int64(3000+i))
		bad.Counterparty = maliciousAddr
		records = append(records, bad)

		v := extractGeneralRisk(history(records...), labels, p).Value
		require.LessOrEqual(t, v, prev, "adding a malicious interaction increased the sub-score")
		prev = v
	}
}

func TestGeneralRisk_BenignLabelsDoNotPenalize(t *testing.T) {
	p := RiskParams{NeutralDefault: 50}
	r := rec("0xa", 0, 1000)
	r.Counterparty = benignAddr

	s := extractGeneralRisk(history(r), benignLabels(), p)
	assert.Equal(t, 100.0, s.Value)
}

// --- Asset Risk ---

func TestAssetRisk_EmptyHistory(t *testing.T) {
	s := extractAssetRisk(emptyHistory(), map[string]domain.RiskTier{})
	assert.Equal(t, 100.0, s.Value)
	assert.False(t, s.Degraded)
}

func TestAssetRisk_NeverDegraded(t *testing.T) {
	s := extractAssetRisk(history(rec("0xa", 0, 1000)), nil)
	assert.False(t, s.Degraded)
	assert.Equal(t, 100.0, s.Value)
}

func TestAssetRisk_PenalizesHighTierShare(t *testing.T) {
	tiers := map[string]domain.RiskTier{mixerAsset: domain.RiskTierHigh}

	var records []*domain.TransactionRecord
	for i := 0; i < 4; i++ {
		r := rec("0xa", i, int64(1000+i))
		if i < 2 {
			r.Asset = mixerAsset
		}
		records = append(records, r)
	}

	// Half the interactions, half the volume: share 0.5.
	s := extractAssetRisk(history(records...), tiers)
	assert.InDelta(t, 50.0, s.Value, 0.001)
}
