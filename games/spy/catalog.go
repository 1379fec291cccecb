/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spy

import (
	"fmt"
	"strings"

	"github.com/Seednode/partyhost/games"
)

const (
	DefaultLanguage = "en"
)

var languages = []string{"en", "ar"}

// ParseLanguage normalizes a client-supplied language tag. Empty means the
// default language.
func ParseLanguage(s string) (string, error) {
	lang := strings.ToLower(strings.TrimSpace(s))
	if lang == "" {
		return DefaultLanguage, nil
	}
	for _, l := range languages {
		if l == lang {
			return lang, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported language %q", games.ErrValidation, s)
}

// Text is one string in every language it has been translated to.
type Text map[string]string

// In returns the translation for lang, falling back to the default language.
func (t Text) In(lang string) string {
	if v, ok := t[lang]; ok {
		return v
	}
	return t[DefaultLanguage]
}

// Location is a place civilians share. Role labels line up by index across
// languages, so a player keeps the same role when the language changes.
type Location struct {
	Name  Text
	Roles []Text
}

var Locations = []Location{
	{
		Name: Text{"en": "Airport", "ar": "المطار"},
		Roles: []Text{
			{"en": "Pilot", "ar": "طيار"},
			{"en": "Flight Attendant", "ar": "مضيف طيران"},
			{"en": "Passenger", "ar": "مسافر"},
			{"en": "Security Officer", "ar": "ضابط أمن"},
			{"en": "Customs Agent", "ar": "موظف جمارك"},
			{"en": "Baggage Handler", "ar": "عامل أمتعة"},
			{"en": "Air Traffic Controller", "ar": "مراقب جوي"},
		},
	},
	{
		Name: Text{"en": "Hospital", "ar": "المستشفى"},
		Roles: []Text{
			{"en": "Surgeon", "ar": "جراح"},
			{"en": "Nurse", "ar": "ممرض"},
			{"en": "Patient", "ar": "مريض"},
			{"en": "Pharmacist", "ar": "صيدلي"},
			{"en": "Receptionist", "ar": "موظف استقبال"},
			{"en": "Paramedic", "ar": "مسعف"},
			{"en": "Visitor", "ar": "زائر"},
		},
	},
	{
		Name: Text{"en": "School", "ar": "المدرسة"},
		Roles: []Text{
			{"en": "Teacher", "ar": "معلم"},
			{"en": "Student", "ar": "طالب"},
			{"en": "Principal", "ar": "مدير المدرسة"},
			{"en": "Janitor", "ar": "عامل نظافة"},
			{"en": "Librarian", "ar": "أمين المكتبة"},
			{"en": "Bus Driver", "ar": "سائق الحافلة"},
			{"en": "Coach", "ar": "مدرب"},
		},
	},
	{
		Name: Text{"en": "Restaurant", "ar": "المطعم"},
		Roles: []Text{
			{"en": "Chef", "ar": "طاهي"},
			{"en": "Waiter", "ar": "نادل"},
			{"en": "Customer", "ar": "زبون"},
			{"en": "Cashier", "ar": "أمين الصندوق"},
			{"en": "Dishwasher", "ar": "غاسل الصحون"},
			{"en": "Food Critic", "ar": "ناقد طعام"},
			{"en": "Manager", "ar": "المدير"},
		},
	},
	{
		Name: Text{"en": "Beach", "ar": "الشاطئ"},
		Roles: []Text{
			{"en": "Lifeguard", "ar": "منقذ"},
			{"en": "Surfer", "ar": "راكب أمواج"},
			{"en": "Ice Cream Seller", "ar": "بائع بوظة"},
			{"en": "Tourist", "ar": "سائح"},
			{"en": "Photographer", "ar": "مصور"},
			{"en": "Fisherman", "ar": "صياد"},
		},
	},
	{
		Name: Text{"en": "Supermarket", "ar": "السوبرماركت"},
		Roles: []Text{
			{"en": "Cashier", "ar": "أمين الصندوق"},
			{"en": "Shopper", "ar": "متسوق"},
			{"en": "Butcher", "ar": "جزار"},
			{"en": "Stock Clerk", "ar": "عامل مخزن"},
			{"en": "Security Guard", "ar": "حارس أمن"},
			{"en": "Baker", "ar": "خباز"},
		},
	},
	{
		Name: Text{"en": "Movie Theater", "ar": "السينما"},
		Roles: []Text{
			{"en": "Ticket Seller", "ar": "بائع التذاكر"},
			{"en": "Projectionist", "ar": "مشغل العرض"},
			{"en": "Moviegoer", "ar": "مشاهد"},
			{"en": "Popcorn Vendor", "ar": "بائع الفشار"},
			{"en": "Usher", "ar": "مرشد القاعة"},
			{"en": "Film Critic", "ar": "ناقد سينمائي"},
		},
	},
	{
		Name: Text{"en": "Police Station", "ar": "مركز الشرطة"},
		Roles: []Text{
			{"en": "Detective", "ar": "محقق"},
			{"en": "Police Officer", "ar": "شرطي"},
			{"en": "Suspect", "ar": "مشتبه به"},
			{"en": "Lawyer", "ar": "محامي"},
			{"en": "Witness", "ar": "شاهد"},
			{"en": "Chief", "ar": "رئيس المركز"},
		},
	},
	{
		Name: Text{"en": "Football Stadium", "ar": "ملعب كرة القدم"},
		Roles: []Text{
			{"en": "Goalkeeper", "ar": "حارس مرمى"},
			{"en": "Referee", "ar": "حكم"},
			{"en": "Fan", "ar": "مشجع"},
			{"en": "Coach", "ar": "مدرب"},
			{"en": "Commentator", "ar": "معلق"},
			{"en": "Striker", "ar": "مهاجم"},
			{"en": "Snack Vendor", "ar": "بائع وجبات"},
		},
	},
	{
		Name: Text{"en": "Space Station", "ar": "محطة الفضاء"},
		Roles: []Text{
			{"en": "Commander", "ar": "القائد"},
			{"en": "Engineer", "ar": "مهندس"},
			{"en": "Scientist", "ar": "عالم"},
			{"en": "Doctor", "ar": "طبيب"},
			{"en": "Space Tourist", "ar": "سائح فضائي"},
		},
	},
}

var uiText = map[string]Text{
	"who_is_spy":          {"en": "Who Is The Spy?", "ar": "من هو الجاسوس؟"},
	"waiting_for_players": {"en": "Waiting for players...", "ar": "في انتظار اللاعبين..."},
	"start_game":          {"en": "Start Game", "ar": "ابدأ اللعبة"},
	"round_starting":      {"en": "Round starting! Check your phone.", "ar": "الجولة تبدأ! تفقد هاتفك."},
	"spy_msg":             {"en": "You are the SPY!", "ar": "أنت الجاسوس!"},
	"figure_out_location": {"en": "Figure out the location without getting caught.", "ar": "اكتشف المكان دون أن يكشفوك."},
	"you_are_safe":        {"en": "You are not the spy", "ar": "أنت لست الجاسوس"},
	"civilian_msg":        {"en": "Location", "ar": "المكان"},
	"role_msg":            {"en": "Your role", "ar": "دورك"},
	"players":             {"en": "Players", "ar": "اللاعبون"},
	"room_code":           {"en": "Room code", "ar": "رمز الغرفة"},
	"voting":              {"en": "Voting", "ar": "التصويت"},
	"vote_now":            {"en": "Vote now!", "ar": "صوّت الآن!"},
	"vote_for":            {"en": "Vote for", "ar": "صوّت لـ"},
	"votes":               {"en": "Votes", "ar": "الأصوات"},
	"waiting_votes":       {"en": "Waiting for votes...", "ar": "في انتظار الأصوات..."},
	"spy_wins":            {"en": "The spy wins!", "ar": "الجاسوس فاز!"},
	"civilians_win":       {"en": "The civilians win!", "ar": "المدنيون فازوا!"},
	"the_spy_was":         {"en": "The spy was", "ar": "الجاسوس كان"},
	"the_location_was":    {"en": "The location was", "ar": "المكان كان"},
	"you_won":             {"en": "You won!", "ar": "لقد فزت!"},
	"you_lost":            {"en": "You lost!", "ar": "لقد خسرت!"},
	"play_again":          {"en": "Play again", "ar": "العب مرة أخرى"},
	"back_to_lobby":       {"en": "Back to lobby", "ar": "العودة إلى الردهة"},
}

// UIText returns the translation of key, falling back to the default
// language and then to the key itself.
func UIText(key, lang string) string {
	t, ok := uiText[key]
	if !ok {
		return key
	}
	if v := t.In(lang); v != "" {
		return v
	}
	return key
}

// AllUIText returns every UI string in lang.
func AllUIText(lang string) map[string]string {
	out := make(map[string]string, len(uiText))
	for key := range uiText {
		out[key] = UIText(key, lang)
	}
	return out
}
