package optimizer

// WeekendCombinations is the fixed catalog of two-post combinations offered
// on weekends and holidays. Each entry concatenates two 2-character post
// abbreviations performed by the same person on the same date.
var WeekendCombinations = []string{
	// morning visits + afternoon consultations
	"MLCA", "MLAC", "MLCT",
	// morning consultations + afternoon consultations
	"MMCA", "MMAC", "MMCT",
	"CMCA", "CMAC",
	// morning + afternoon visits
	"MLAL", "MMAL", "CMAL",
	// afternoon posts + night posts
	"CANL", "ACNL", "ALNL",
	"CANM", "ACNM",
	"CTNA", "CANC",
}

// postGroups maps each 2-character post code to the quota groups it counts
// toward. The table is a fixed business rule; the only dynamic adjustment
// is the Friday long-night case handled in groupsForCombo.
var postGroups = map[string][]string{
	"MM": {"CmS", "CmD"},
	"CM": {"CmS", "CmD"},
	"CA": {"CaSD"},
	"CT": {"CaSD"},
	"ML": {"VmS", "VmD"},
	"AL": {"VaSD"},
	"AC": {"VaSD"},
	"NA": {"NAMw"},
	"NM": {"NAMw"},
	"NC": {"NAMw"},
	"NL": {"NAMw"},
}

// comboPosts splits a 4-character combination into its two component post
// codes. Returns false for malformed keys.
func comboPosts(combo string) (string, string, bool) {
	if len(combo) != 4 {
		return "", "", false
	}
	return combo[:2], combo[2:], true
}
