package claims

import (
	"fmt"
	"strconv"
	"strings"
)

// Companies is the fixed insurer catalog offered when adding a policy.
// Free text is accepted as well.
var Companies = []string{
	"國泰人壽 (Cathay Life)",
	"富邦人壽 (Fubon Life)",
	"南山人壽 (Nan Shan Life)",
	"新光人壽 (Shin Kong Life)",
	"凱基人壽 (原中國人壽)",
	"台灣人壽 (Taiwan Life)",
	"三商美邦人壽 (Mercuries Life)",
	"全球人壽 (TransGlobe Life)",
	"遠雄人壽 (Farglory Life)",
	"元大人壽 (Yuanta Life)",
	"宏泰人壽 (Hontai Life)",
	"安聯人壽 (Allianz)",
	"保誠人壽 (Prudential)",
	"友邦人壽 (AIA)",
	"法國巴黎人壽 (Cardif)",
	"安達人壽 (Chubb)",
	"第一金人壽 (First Life)",
	"合作金庫人壽 (BNP Paribas)",
	"臺銀人壽 (BankTaiwan Life)",
	"中華郵政壽險 (Chunghwa Post)",
	"其他保險公司",
}

var PlanCategories = []string{
	"壽險 (終身/定期)",
	"住院醫療 (實支實付)",
	"住院醫療 (日額型)",
	"重大疾病/特定傷病",
	"癌症醫療 (一次給付)",
	"癌症醫療 (住院/化療)",
	"意外傷害 (死殘/醫療)",
	"失能扶助/長期照顧",
	"投資型保單",
	"年金保險",
	"不確定/其他",
}

// OtherOption is the catalog entry meaning "use the custom text instead".
const OtherOption = "其他 (自行輸入)"

var IncidentTypes = []string{
	"疾病 (住院/門診)",
	"意外傷害 (挫傷/骨折等)",
	"癌症相關 (確診/治療)",
	"壽險事故 (失能/死亡)",
	"重大疾病 (中風/心梗等)",
	"長期照顧/失能扶助",
	OtherOption,
}

var TreatmentMethods = []string{
	"一般門診 (不含手術)",
	"門診手術 (不需住院)",
	"住院手術",
	"癌症化學/放射線治療",
	"重大處置 (如血液透析)",
	"物理復健/職能治療",
	OtherOption,
}

// ResolveTag returns the catalog entry chosen by selected (the entry itself or
// its 1-based index), or custom when that entry is OtherOption.
func ResolveTag(catalog []string, selected, custom string) string {
	selected = strings.TrimSpace(selected)
	if idx, err := strconv.Atoi(selected); err == nil && idx >= 1 && idx <= len(catalog) {
		selected = catalog[idx-1]
	}
	if selected == OtherOption {
		return strings.TrimSpace(custom)
	}
	return selected
}

// TaggedText formats "[tag] text", substituting fallback for blank text.
func TaggedText(tag, text, fallback string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		text = fallback
	}
	return fmt.Sprintf("[%s] %s", strings.TrimSpace(tag), text)
}
