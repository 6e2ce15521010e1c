package rules

// Default returns the full production catalog. The catalog is assembled once
// per call; callers keep a single instance for the process lifetime and share
// it freely.
func Default() *Library {
	return NewLibrary([]RuleSet{
		{Category: Hedging, Rules: []Rule{
			{ci(`\bI think that\b`), "", "Removes unnecessary thinking phrases", 15},
			{ci(`\bI think\b`), "", "Removes unnecessary thinking phrases", 12},
			{ci(`\bI believe that\b`), "", "Removes belief qualifiers", 15},
			{ci(`\bI believe\b`), "", "Removes belief qualifiers", 12},
			{ci(`\bI guess that\b`), "", "Eliminates guessing language", 15},
			{ci(`\bI feel like\b`), "", "Replaces feelings with facts", 15},
			{ci(`\bmaybe\s*,?\s*`), "", "Removes hedging", 10},
			{ci(`\bperhaps\s*,?\s*`), "", "Removes hedging", 10},
			{ci(`\bpossibly\s*,?\s*`), "", "Removes hedging", 10},
			{ci(`\bprobably\s*,?\s*`), "", "Removes hedging", 10},
			{ci(`\b(?:kind|sort) of\b`), "", "Eliminates weak qualifiers", 12},
			{ci(`\bbasically\b`), "", "Removes filler", 8},
			{ci(`\bactually\b`), "", "Removes unnecessary emphasis", 8},
		}},
		{Category: Uncertainty, Rules: []Rule{
			{ci(`\bI don't know if\b`), "", "Removes uncertainty admission", 20},
			{ci(`\bI'm not sure if\b`), "", "Removes doubt", 20},
			{ci(`\bI don't know\b`), "", "Removes uncertainty", 18},
			{ci(`\bnot sure\b`), "unclear", "Converts uncertainty to fact", 15},
			{ci(`\bmixed up\b`), "unclear", "Clarifies confusion", 15},
		}},
		{Category: WeakVerbs, Rules: []Rule{
			{ci(`\bmight be able to\b`), "can", "Strengthens capability", 18},
			{ci(`\bcould be able to\b`), "can", "Shows definite ability", 18},
			{ci(`\bwould be able to\b`), "can", "Demonstrates capability", 18},
			{ci(`\bmight be\b`), "is", "Strengthens statement", 15},
			{ci(`\bcould be\b`), "is", "Makes definitive claim", 15},
			{ci(`\bseems to be\b`), "is", "Converts appearance to fact", 15},
			{ci(`\bappears to be\b`), "is", "States facts directly", 15},
			{ci(`\btends to be\b`), "is", "Makes direct statement", 15},
		}},
		{Category: Passive, Rules: []Rule{
			{ci(`\b(?:is|are|was|were|be|been|being)\s+\w+ed\s+by\b`), "", "Flags passive construction for an active rewrite", 16},
		}},
		{Category: Questions, Rules: []Rule{
			{ci(`What do you think\?`), "", "Removes validation seeking", 15},
			{ci(`Should we\?`), ".", "Makes decisive statement", 15},
			{ci(`\?\s*$`), ".", "Converts question to statement", 12},
		}},
		{Category: SelfTalk, Rules: []Rule{
			{ci(`\bsorry to bother\b`), "", "Eliminates apologetic tone", 18},
			{ci(`\bI need your help\b`), "", "Removes dependency language", 12},
			{ci(`\bI can't\b`), "I can", "Reverses negative self-talk", 15},
			{ci(`\bI'm bad at\b`), "I'm improving at", "Reframes self-criticism", 15},
			{ci(`\bjust wanted to\b`), "wanted to", "Removes minimizing", 10},
			{ci(`\bjust a\b`), "a", "Removes minimizing", 8},
		}},
		{Category: Filler, Rules: []Rule{
			{ci(`\bjust\b`), "", "Removes minimizing filler", 8},
			{ci(`\breally\b`), "", "Removes empty intensifier", 6},
			{ci(`\bvery\b`), "", "Removes empty intensifier", 6},
			{ci(`\bextremely\b`), "", "Removes empty intensifier", 6},
			{ci(`\bhighly\b`), "", "Removes empty intensifier", 6},
			{ci(`\balways\b`), "", "Removes absolute language", 4},
			{ci(`\bnever\b`), "", "Removes absolute language", 4},
		}},
		{Category: Grammar, Rules: []Rule{
			{ci(`\bill be able to\b`), "I'll be able to", "Fixes contraction", 5},
			{ci(`\bits all been\b`), "it's all been", "Fixes contraction", 5},
			{ci(`\bI dont\b`), "I don't", "Fixes grammar", 5},
			{ci(`\bdont\b`), "don't", "Fixes grammar", 5},
			{ci(`\bim\b`), "I'm", "Fixes contraction", 5},
		}},
	})
}
