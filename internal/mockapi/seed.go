package mockapi

import "bookcatalog/internal/book"

func intPtr(n int) *int { return &n }

// SeedData returns the fixed dataset served in mock mode.
func SeedData() []book.Book {
	return []book.Book{
		{
			ID:        1,
			Title:     "Clean Code: A Handbook of Agile Software Craftsmanship",
			Author:    "Robert C. Martin",
			Publisher: "Pearson",
			Synopsis:  "A guide to writing clean, readable, and maintainable code. This book presents the principles of clean code in a practical way with lots of examples.",
			Pages:     intPtr(464),
			Format:    "Digital",
			Subjects:  "Programming, Software Engineering, Best Practices",
		},
		{
			ID:        2,
			Title:     "The Clean Coder: A Code of Conduct for Professional Programmers",
			Author:    "Robert C. Martin",
			Publisher: "Pearson",
			Synopsis:  "A practical guide to becoming a professional programmer. The book covers topics like responsibility, accountability, and how to deal with pressure.",
			Pages:     intPtr(256),
			Format:    "Physical",
			Subjects:  "Programming, Professional Development, Career",
		},
		{
			ID:        3,
			Title:     "JavaScript: The Good Parts",
			Author:    "Douglas Crockford",
			Publisher: "O'Reilly Media",
			Synopsis:  "This book explores the elegant subset of JavaScript that's more reliable, readable, and maintainable.",
			Pages:     intPtr(176),
			Format:    "Digital",
			Subjects:  "JavaScript, Programming, Web Development",
		},
		{
			ID:        4,
			Title:     "Design Patterns: Elements of Reusable Object-Oriented Software",
			Author:    "Gang of Four",
			Publisher: "Addison-Wesley",
			Synopsis:  "Captures a wealth of experience about the design of object-oriented software.",
			Pages:     intPtr(395),
			Format:    "Physical",
			Subjects:  "Design Patterns, OOP, Software Architecture",
		},
		{
			ID:        5,
			Title:     "Refactoring: Improving the Design of Existing Code",
			Author:    "Martin Fowler",
			Publisher: "Addison-Wesley",
			Synopsis:  "A handbook of techniques for restructuring existing code without changing its functionality.",
			Pages:     intPtr(448),
			Format:    "Digital",
			Subjects:  "Refactoring, Code Quality, Software Engineering",
		},
		{
			ID:        6,
			Title:     "You Don't Know JS: Scope & Closures",
			Author:    "Kyle Simpson",
			Publisher: "O'Reilly Media",
			Synopsis:  "Deep dive into JavaScript scope and closures concepts.",
			Pages:     intPtr(98),
			Format:    "Digital",
			Subjects:  "JavaScript, Programming, Web Development",
		},
	}
}
