package db

import (
	"database/sql"
	"fmt"
)

type seedGiftType struct {
	id          int64
	name        string
	emoji       string
	description string
	price       string
	category    string
}

// defaultGiftTypes is the launch catalog. Ids are stable: clients refer to
// gift types by id.
func defaultGiftTypes() []seedGiftType {
	return []seedGiftType{
		{1, "Herbruikbare fles", "🍼", "Duurzame waterfles", "12.50", "duurzaam"},
		{2, "Bamboe tandenborstel", "🪥", "Eco-vriendelijke tandenborstel", "4.50", "duurzaam"},
		{3, "Plantje", "🌱", "Kleine kamerplant", "8.75", "duurzaam"},
		{4, "Bio zeep", "🧼", "Natuurlijke zeep", "6.25", "duurzaam"},
		{5, "Smoothie", "🥤", "Verse groente smoothie", "5.50", "gezond-vitaal"},
		{6, "Salade", "🥗", "Verse gemengde salade", "8.25", "gezond-vitaal"},
		{7, "Yoga les", "🧘", "Één yoga sessie", "15.00", "gezond-vitaal"},
		{8, "Vitamine pack", "💊", "Natuurlijke vitamines", "12.75", "gezond-vitaal"},
		{9, "Treinkaartje", "🚂", "Dagretour treinreis", "25.00", "reizen-belevenissen"},
		{10, "Museumkaart", "🖼️", "Entree voor museum", "18.50", "reizen-belevenissen"},
		{11, "Escape room", "🔐", "Escape room ervaring", "22.00", "reizen-belevenissen"},
		{12, "Stadsrondleiding", "🛏️", "Begeleide stadstour", "16.75", "reizen-belevenissen"},
		{13, "Bioscoop", "🎬", "Bioscoopkaartje", "12.50", "cultuur-film"},
		{14, "Theater", "🎭", "Theatervoorstelling", "18.50", "cultuur-film"},
		{15, "Concert", "🎵", "Concert ticket", "15.00", "cultuur-film"},
		{16, "Sportschool", "🏋️", "Dagpas sportschool", "12.00", "fysiek"},
		{17, "Zwemles", "🏊", "Zwemles sessie", "8.50", "fysiek"},
		{18, "T-shirt", "👕", "Basic t-shirt", "15.00", "mode"},
		{19, "Sokken", "🧦", "Paar leuke sokken", "5.00", "mode"},
		{20, "Massage", "💆", "30 min ontspanningsmassage", "25.00", "beauty-wellness"},
		{21, "Haarknipbeurt", "💇", "Haarverzorging bij kapper", "8.00", "beauty-wellness"},
		{22, "Biertje", "🍺", "Een lekker biertje bij deelnemende cafés", "3.50", "kroeg"},
		{23, "Wijntje", "🍷", "Een glas wijn bij restaurants", "4.50", "kroeg"},
		{24, "Bloemen", "💐", "Mooi boeket bloemen", "12.00", "huis-tuin"},
		{25, "Plant", "🪴", "Decoratieve plantenpot", "15.00", "huis-tuin"},
		{26, "Speelgoed", "🧸", "Leuk speelgoed", "12.50", "baby-kind"},
		{27, "Knuffel", "🧸", "Zachte knuffel", "12.50", "baby-kind"},
		{28, "Boek", "📖", "Paperback boek naar keuze", "12.50", "lezen"},
		{29, "Magazine", "📰", "Maandblad abonnement", "4.50", "lezen"},
		{30, "Netflix tegoed", "📺", "Streaming tegoed", "10.00", "streaming-gaming"},
		{31, "Game", "🎮", "Gaming platform tegoed", "15.00", "streaming-gaming"},
		{32, "Pizza", "🍕", "Een punt pizza bij pizzeria", "3.25", "eten-drinken"},
		{33, "Coffee", "☕", "Verse koffie bij coffeeshops", "2.75", "eten-drinken"},
		{34, "Frisje", "🥤", "Verfrissende frisdrank", "2.50", "eten-drinken"},
	}
}

// SeedCatalog inserts the default gift types. Existing rows are left alone,
// so administrative edits survive restarts.
func SeedCatalog(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed: %w", err)
	}
	defer tx.Rollback()

	for _, g := range defaultGiftTypes() {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO gift_types (id, name, emoji, description, price, category, active)
			 VALUES (?, ?, ?, ?, ?, ?, 1)`,
			g.id, g.name, g.emoji, g.description, g.price, g.category,
		)
		if err != nil {
			return fmt.Errorf("seeding gift type %d: %w", g.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}
