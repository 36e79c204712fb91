package dialogue

import (
	"ai-knowledge-router-be/pkg/lexical"
)

type verdict int

const (
	verdictUnknown verdict = iota
	verdictAffirm
	verdictDeny
)

var affirmWords = map[string]bool{
	"ya": true, "iya": true, "iy": true, "y": true, "yes": true, "yup": true, "yep": true,
	"yeah": true, "benar": true, "bener": true, "betul": true, "ok": true, "oke": true,
	"okay": true, "okey": true, "sip": true, "setuju": true, "tentu": true, "boleh": true,
	"lanjut": true, "lanjutkan": true, "correct": true, "right": true, "sure": true,
	"tepat": true, "persis": true, "exactly": true, "confirm": true, "confirmed": true,
}

var denyWords = map[string]bool{
	"tidak": true, "tdk": true, "bukan": true, "no": true, "nope": true, "nah": true,
	"salah": true, "ga": true, "gak": true, "nggak": true, "ngga": true, "enggak": true,
	"engga": true, "jangan": true, "batal": true, "wrong": true, "not": true,
}

// neutral words may accompany a confirm or deny without changing it
var neutralWords = map[string]bool{
	"kak": true, "dong": true, "deh": true, "sih": true, "kok": true, "itu": true,
	"yang": true, "saya": true, "aku": true, "maksud": true, "maksudnya": true,
	"memang": true, "sudah": true, "please": true, "pak": true, "bu": true, "min": true,
	"nya": true, "is": true, "it": true, "that": true, "thats": true, "s": true,
	"sekali": true, "banget": true, "sangat": true, "very": true, "much": true, "thanks": true,
}

// lookup resolves token against vocab, first as-is, then with long letter runs
// collapsed, then with every doubled letter collapsed.
func lookup(token string, vocab map[string]bool) bool {
	if vocab[token] {
		return true
	}
	if vocab[lexical.CollapseElongation(token, 3)] {
		return true
	}
	return vocab[lexical.CollapseElongation(token, 2)]
}

// classifyReply applies the closed confirm/deny vocabulary. Replies mixing both
// families or containing other words are unknown.
func classifyReply(reply string) verdict {
	affirm, deny := 0, 0
	for _, tok := range lexical.Tokenize(reply) {
		switch {
		case lookup(tok, affirmWords):
			affirm++
		case lookup(tok, denyWords):
			deny++
		case lookup(tok, neutralWords):
		default:
			return verdictUnknown
		}
	}
	switch {
	case affirm > 0 && deny == 0:
		return verdictAffirm
	case deny > 0 && affirm == 0:
		return verdictDeny
	default:
		return verdictUnknown
	}
}
