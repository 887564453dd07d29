package holiday

// gazette lists the national holidays published by the Cabinet Office
// for 2023 through 2027, including substitute holidays (振替休日) and
// the 2026 bridge holiday (国民の休日).
var gazette = []struct {
	date string
	name string
}{
	{"2023-01-01", "元日"},
	{"2023-01-02", "振替休日"},
	{"2023-01-09", "成人の日"},
	{"2023-02-11", "建国記念の日"},
	{"2023-02-23", "天皇誕生日"},
	{"2023-03-21", "春分の日"},
	{"2023-04-29", "昭和の日"},
	{"2023-05-03", "憲法記念日"},
	{"2023-05-04", "みどりの日"},
	{"2023-05-05", "こどもの日"},
	{"2023-07-17", "海の日"},
	{"2023-08-11", "山の日"},
	{"2023-09-18", "敬老の日"},
	{"2023-09-23", "秋分の日"},
	{"2023-10-09", "スポーツの日"},
	{"2023-11-03", "文化の日"},
	{"2023-11-23", "勤労感謝の日"},

	{"2024-01-01", "元日"},
	{"2024-01-08", "成人の日"},
	{"2024-02-11", "建国記念の日"},
	{"2024-02-12", "振替休日"},
	{"2024-02-23", "天皇誕生日"},
	{"2024-03-20", "春分の日"},
	{"2024-04-29", "昭和の日"},
	{"2024-05-03", "憲法記念日"},
	{"2024-05-04", "みどりの日"},
	{"2024-05-05", "こどもの日"},
	{"2024-05-06", "振替休日"},
	{"2024-07-15", "海の日"},
	{"2024-08-11", "山の日"},
	{"2024-08-12", "振替休日"},
	{"2024-09-16", "敬老の日"},
	{"2024-09-22", "秋分の日"},
	{"2024-09-23", "振替休日"},
	{"2024-10-14", "スポーツの日"},
	{"2024-11-03", "文化の日"},
	{"2024-11-04", "振替休日"},
	{"2024-11-23", "勤労感謝の日"},

	{"2025-01-01", "元日"},
	{"2025-01-13", "成人の日"},
	{"2025-02-11", "建国記念の日"},
	{"2025-02-23", "天皇誕生日"},
	{"2025-02-24", "振替休日"},
	{"2025-03-20", "春分の日"},
	{"2025-04-29", "昭和の日"},
	{"2025-05-03", "憲法記念日"},
	{"2025-05-04", "みどりの日"},
	{"2025-05-05", "こどもの日"},
	{"2025-05-06", "振替休日"},
	{"2025-07-21", "海の日"},
	{"2025-08-11", "山の日"},
	{"2025-09-15", "敬老の日"},
	{"2025-09-23", "秋分の日"},
	{"2025-10-13", "スポーツの日"},
	{"2025-11-03", "文化の日"},
	{"2025-11-23", "勤労感謝の日"},
	{"2025-11-24", "振替休日"},

	{"2026-01-01", "元日"},
	{"2026-01-12", "成人の日"},
	{"2026-02-11", "建国記念の日"},
	{"2026-02-23", "天皇誕生日"},
	{"2026-03-20", "春分の日"},
	{"2026-04-29", "昭和の日"},
	{"2026-05-03", "憲法記念日"},
	{"2026-05-04", "みどりの日"},
	{"2026-05-05", "こどもの日"},
	{"2026-05-06", "振替休日"},
	{"2026-07-20", "海の日"},
	{"2026-08-11", "山の日"},
	{"2026-09-21", "敬老の日"},
	{"2026-09-22", "国民の休日"},
	{"2026-09-23", "秋分の日"},
	{"2026-10-12", "スポーツの日"},
	{"2026-11-03", "文化の日"},
	{"2026-11-23", "勤労感謝の日"},

	{"2027-01-01", "元日"},
	{"2027-01-11", "成人の日"},
	{"2027-02-11", "建国記念の日"},
	{"2027-02-23", "天皇誕生日"},
	{"2027-03-21", "春分の日"},
	{"2027-03-22", "振替休日"},
	{"2027-04-29", "昭和の日"},
	{"2027-05-03", "憲法記念日"},
	{"2027-05-04", "みどりの日"},
	{"2027-05-05", "こどもの日"},
	{"2027-07-19", "海の日"},
	{"2027-08-11", "山の日"},
	{"2027-09-20", "敬老の日"},
	{"2027-09-23", "秋分の日"},
	{"2027-10-11", "スポーツの日"},
	{"2027-11-03", "文化の日"},
	{"2027-11-23", "勤労感謝の日"},
}
