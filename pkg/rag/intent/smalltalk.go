package intent

import (
	"strings"

	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/store"
)

var smallTalkLexicon = map[string]string{
	"halo": store.SubtypeGreeting, "hallo": store.SubtypeGreeting, "hai": store.SubtypeGreeting,
	"hi": store.SubtypeGreeting, "hello": store.SubtypeGreeting, "hey": store.SubtypeGreeting,
	"pagi": store.SubtypeGreeting, "siang": store.SubtypeGreeting, "sore": store.SubtypeGreeting,
	"malam": store.SubtypeGreeting, "selamat pagi": store.SubtypeGreeting,
	"selamat siang": store.SubtypeGreeting, "selamat sore": store.SubtypeGreeting,
	"selamat malam": store.SubtypeGreeting, "good morning": store.SubtypeGreeting,
	"good afternoon": store.SubtypeGreeting, "good evening": store.SubtypeGreeting,
	"assalamualaikum": store.SubtypeGreeting, "permisi": store.SubtypeGreeting,

	"terima kasih": store.SubtypeThanks, "makasih": store.SubtypeThanks, "trims": store.SubtypeThanks,
	"thanks": store.SubtypeThanks, "thank you": store.SubtypeThanks, "thx": store.SubtypeThanks,
	"tq": store.SubtypeThanks, "tengkyu": store.SubtypeThanks,

	"bye": store.SubtypeBye, "dadah": store.SubtypeBye, "sampai jumpa": store.SubtypeBye,
	"goodbye": store.SubtypeBye, "see you": store.SubtypeBye, "bye bye": store.SubtypeBye,

	"ok": store.SubtypeAffirmation, "oke": store.SubtypeAffirmation, "okay": store.SubtypeAffirmation,
	"sip": store.SubtypeAffirmation, "siap": store.SubtypeAffirmation, "noted": store.SubtypeAffirmation,
	"mantap": store.SubtypeAffirmation, "baik": store.SubtypeAffirmation, "paham": store.SubtypeAffirmation,
}

// fillers may trail a small-talk phrase without changing it
var fillers = map[string]bool{
	"kak": true, "min": true, "bro": true, "sis": true, "pak": true, "bu": true,
	"ya": true, "dong": true, "banget": true, "banyak": true, "sekali": true,
	"so": true, "much": true, "very": true, "all": true, "semua": true,
	"semuanya": true, "team": true, "tim": true, "there": true,
}

// SmallTalkSubtype matches a whole message against the closed small-talk lexicon
func SmallTalkSubtype(message string) (string, bool) {
	tokens := lexical.Tokenize(lexical.CollapseElongation(message, 3))
	for len(tokens) > 0 && fillers[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 || len(tokens) > 3 {
		return "", false
	}
	subtype, ok := smallTalkLexicon[strings.Join(tokens, " ")]
	return subtype, ok
}
