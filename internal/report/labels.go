package report

import "github.com/joelkehle/claimestimate/internal/claims"

type labels struct {
	title, generated, incidentDate, disclaimer, degraded string
	summary, total                                       string
	incident, diagnosis, surgery, days, visits           string
	expense, retained, evidence                          string
	items, noItems                                       string
	colPolicy, colComponent, colStatus, colAmount        string
	colReason                                            string
	points, advice                                       string
	status                                               map[claims.ClaimStatus]string
	adviceType                                           map[claims.AdviceType]string
}

var english = labels{
	title:        "Claim Estimate",
	generated:    "Generated",
	incidentDate: "Incident date",
	disclaimer:   "This is an AI-assisted estimate, not a claim decision. The insurer's assessment is final.",
	degraded:     "The estimate could not be completed. Check the input and try again.",
	summary:      "Summary",
	total:        "Estimated total",
	incident:     "Incident",
	diagnosis:    "Diagnosis",
	surgery:      "Treatment",
	days:         "Hospital days",
	visits:       "Outpatient visits",
	expense:      "Total expense",
	retained:     "Retained amount",
	evidence:     "Evidence files",
	items:        "Claim Items",
	noItems:      "No claimable items were identified.",
	colPolicy:    "Policy",
	colComponent: "Benefit",
	colStatus:    "Status",
	colAmount:    "Amount",
	colReason:    "Reason",
	points:       "Evaluation Points",
	advice:       "Communication Advice",
	status: map[claims.ClaimStatus]string{
		claims.StatusApplicable:    "Applicable",
		claims.StatusPotential:     "Potential",
		claims.StatusNotApplicable: "Not applicable",
	},
	adviceType: map[claims.AdviceType]string{
		claims.AdviceStrategy: "Strategy",
		claims.AdviceWarning:  "Warning",
		claims.AdviceTip:      "Tip",
	},
}

var traditionalChinese = labels{
	title:        "理賠試算報告",
	generated:    "產生時間",
	incidentDate: "事故日期",
	disclaimer:   "本報告為 AI 輔助試算，並非理賠決定，實際給付以保險公司審核為準。",
	degraded:     "本次試算未能完成，請檢查輸入資料後再試一次。",
	summary:      "摘要",
	total:        "預估可理賠總額",
	incident:     "事故資料",
	diagnosis:    "診斷",
	surgery:      "治療方式",
	days:         "住院天數",
	visits:       "門診次數",
	expense:      "自付總額",
	retained:     "自負額",
	evidence:     "佐證文件",
	items:        "理賠明細",
	noItems:      "未找到可理賠的項目。",
	colPolicy:    "保單",
	colComponent: "給付項目",
	colStatus:    "狀態",
	colAmount:    "金額",
	colReason:    "說明",
	points:       "評估重點",
	advice:       "溝通建議",
	status: map[claims.ClaimStatus]string{
		claims.StatusApplicable:    "可理賠",
		claims.StatusPotential:     "可能理賠",
		claims.StatusNotApplicable: "不適用",
	},
	adviceType: map[claims.AdviceType]string{
		claims.AdviceStrategy: "策略",
		claims.AdviceWarning:  "注意",
		claims.AdviceTip:      "小提醒",
	},
}

func labelsFor(lang claims.Language) labels {
	if claims.ParseLanguage(string(lang)) == claims.LangTraditionalChinese {
		return traditionalChinese
	}
	return english
}

// StatusLabel is the localized display name of a claim status.
func StatusLabel(s claims.ClaimStatus, lang claims.Language) string {
	if label, ok := labelsFor(lang).status[s]; ok {
		return label
	}
	return string(s)
}
