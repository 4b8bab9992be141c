package summarizer

// lexiconEntry maps a literal keyword occurring in the transcript to the
// canonical value reported for it. Entries are checked in order and the
// first hit wins, so more specific spellings come first.
type lexiconEntry struct {
	keyword string
	value   string
}

var productLexicon = []lexiconEntry{
	{"スーパブレイン3000", "Super Brain 3000"},
	{"スーパーブレイン3000", "Super Brain 3000"},
	{"スーパーブレイン", "Super Brain 3000"},
	{"スーパブレイン", "Super Brain 3000"},
	{"3000", "Super Brain 3000"},
}

var callReasonLexicon = []lexiconEntry{
	{"クレーム", "クレーム"},
	{"返品", "返品"},
	{"返却", "返品"},
	{"壊れ", "クレーム"},
	{"故障", "クレーム"},
	{"不具合", "クレーム"},
	{"問題", "クレーム"},
	{"うるさい", "クレーム"},
	{"音", "クレーム"},
	{"弦", "クレーム"},
	{"正常", "問い合わせ"},
}

func matchLexicon(text string, lexicon []lexiconEntry) string {
	for _, entry := range lexicon {
		if containsKeyword(text, entry.keyword) {
			return entry.value
		}
	}
	return ""
}
