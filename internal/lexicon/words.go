package lexicon

// Default word lists. The network is Arabic-first with a large bilingual
// user base, so every list carries both scripts. Matching is substring
// containment after normalization, so entries should be kept short and
// unambiguous.

var defaultPositive = []string{
	"جميل", "رائع", "ممتاز", "مذهل", "أحب", "حب", "سعيد", "شكرا",
	"مبروك", "نجاح", "أفضل", "مميز", "مفيد", "إبداع",
	"good", "great", "love", "awesome", "amazing", "happy",
	"excellent", "best", "thanks", "wonderful",
}

var defaultNegative = []string{
	"سيء", "قبيح", "أكره", "كره", "حزين", "فشل", "مزعج", "غبي",
	"ممل", "أسوأ", "كارثة",
	"bad", "hate", "terrible", "awful", "sad", "worst",
	"angry", "boring", "horrible",
}

var defaultNeutral = []string{
	"عادي", "ربما", "يمكن", "أعتقد", "يبدو", "طبيعي",
	"okay", "maybe", "perhaps", "normal", "fine", "average",
}

var defaultBanned = []string{
	"احتيال", "نصب", "قمار", "اباحي", "تحرش", "عنصري",
	"scam", "porn", "casino", "viagra", "xxx",
}

var defaultStopwords = []string{
	"من", "في", "على", "إلى", "عن", "مع", "هذا", "هذه", "ذلك",
	"التي", "الذي", "كان", "كانت", "لكن", "لقد", "أن", "إن",
	"ما", "لا", "نعم", "كل", "بعض", "عند", "بين", "حتى", "قد",
	"the", "and", "for", "with", "this", "that", "was", "are",
	"have", "not", "you", "but", "all", "can", "will",
}
