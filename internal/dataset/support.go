package dataset

import (
	"fmt"
	"time"

	"kpi-sync-go/internal/logger"
	"kpi-sync-go/internal/types"
)

const (
	colSupRegistered  = "登録日時"
	colSupReception   = "受付タイプ"
	colSupStatus      = "顛末コード"
	colSupMaintenance = "かんたん！保守区分"
	colSupAnswerType  = "回答タイプ"
	colSupCategory    = "サポート区分"
)

const (
	receptionDirect    = "直受け"
	receptionHHDDirect = "HHD入電（直受け）"
	maintenanceMember  = "会員"
	answerEscalated    = "2次T転送"
)

// status codes that never count as a phone inquiry
var excludedStatuses = map[string]bool{
	"折返し不要・ｷｬﾝｾﾙ":  true,
	"ﾒｰﾙ・FAX回答（送信）": true,
	"SRB投稿（要望）":    true,
	"ﾒｰﾙ・FAX文書（受信）": true,
}

// LoadSupport reads the support case workbook and counts, per group, today's
// directly handled inquiries and voicemails.
func LoadSupport(path string, now time.Time) (types.RawData, error) {
	log := logger.New().WithField("component", "dataset.support").WithField("path", path)
	t, err := OpenTable(path)
	if err != nil {
		log.WithError(err).Error("open failed")
		return types.RawData{}, err
	}
	d, err := summarizeSupport(t, now)
	if err != nil {
		return types.RawData{}, err
	}
	log.WithField("rows", t.Len()).Info("support cases counted")
	return d, nil
}

func summarizeSupport(t *Table, now time.Time) (types.RawData, error) {
	cols, err := t.Columns(colSupRegistered, colSupReception, colSupStatus, colSupMaintenance, colSupAnswerType, colSupCategory)
	if err != nil {
		return types.RawData{}, fmt.Errorf("support: %w", err)
	}
	start, end := DayRange(now)

	direct := map[types.Group]int{}
	voicemail := map[types.Group]int{}
	for i := 0; i < t.Len(); i++ {
		reg, ok := t.SerialCell(i, cols[0], now.Location())
		if !ok || reg < start || reg >= end {
			continue
		}
		g, ok := types.GroupForCategory(t.Cell(i, cols[5]))
		if !ok {
			continue
		}
		if excludedStatuses[t.Cell(i, cols[2])] {
			continue
		}
		reception := t.Cell(i, cols[1])
		switch reception {
		case receptionDirect, receptionHHDDirect:
			maintenance := t.Cell(i, cols[3])
			if maintenance != maintenanceMember && maintenance != "" {
				continue
			}
			if t.Cell(i, cols[4]) == answerEscalated {
				continue
			}
			direct[g]++
		case receptionVoicemail:
			voicemail[g]++
		}
	}

	d := types.NewRawData()
	for _, g := range types.Groups {
		k, _ := types.KeysFor(g)
		d.Counts[k.Direct] = direct[g]
		d.Counts[k.Voicemail] = voicemail[g]
	}
	return d, nil
}
