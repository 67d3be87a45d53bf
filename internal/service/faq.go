package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kamau/sugarbloom-api/internal/domain"
)

// faqItems is the static FAQ content.
var faqItems = []domain.FAQItem{
	{
		Question: "How far in advance should I place my cake order?",
		Answer:   "We recommend placing your order at least 1-2 weeks in advance for simple designs, and 2-4 weeks for complex wedding cakes or large events. This ensures we have enough time to create your perfect cake and accommodate any specific requirements.",
	},
	{
		Question: "Do you offer delivery services?",
		Answer:   "Yes! We offer delivery within a 30km radius of our bakery. Delivery fees start at KSH 1,500 and vary based on distance and cake size. We also offer convenient pickup options at our store.",
	},
	{
		Question: "Can you accommodate dietary restrictions?",
		Answer:   "Absolutely! We can create gluten-free, sugar-free, vegan, and dairy-free options. Please mention any dietary restrictions when placing your order, and we'll work with you to create a delicious cake that meets your needs.",
	},
	{
		Question: "What are your cake sizes and serving portions?",
		Answer:   "Our cakes range from 0.5kg to 5kg. As a general guide: 0.5kg serves 4-6 people, 1kg serves 8-10 people, 2kg serves 16-20 people, and 3kg serves 24-30 people. We can provide specific serving recommendations based on your event size.",
	},
	{
		Question: "Can I see my cake design before it's made?",
		Answer:   "For complex custom designs, we can provide sketches or digital mockups for your approval before starting. This service is included for wedding cakes and available for other custom orders upon request.",
	},
	{
		Question: "What payment methods do you accept?",
		Answer:   "We accept cash, credit cards, debit cards, and mobile payments. A 50% deposit is required when placing your order, with the balance due upon pickup or delivery.",
	},
	{
		Question: "How should I store my cake?",
		Answer:   "Most of our cakes should be stored in the refrigerator and brought to room temperature 30 minutes before serving for the best taste and texture. Fondant cakes should be stored at room temperature. We'll provide specific storage instructions with your cake.",
	},
	{
		Question: "Do you offer cake tastings?",
		Answer:   "Yes! We offer cake tasting sessions by appointment, especially for wedding cakes. Contact us to schedule a tasting where you can try different flavors and discuss your design ideas with our bakers.",
	},
	{
		Question: "What's included in the cake price?",
		Answer:   "Our prices include the cake, basic decoration, and packaging. Additional charges may apply for complex designs, special dietary requirements, or premium ingredients like fresh flowers or imported chocolates.",
	},
	{
		Question: "Can you replicate a cake from a photo?",
		Answer:   "We love working from inspiration photos! While we may not be able to create an exact replica due to copyright and technical constraints, we can create a beautiful cake inspired by your photo that captures the same style and feel.",
	},
}

// FAQService serves the FAQ content and tracks which entries are expanded.
// Any number of entries can be open at once; toggling an open entry closes
// it.
type FAQService struct {
	mu   sync.Mutex
	open map[int]bool
}

// NewFAQService creates the FAQ service with every entry collapsed.
func NewFAQService() *FAQService {
	return &FAQService{open: make(map[int]bool)}
}

// Items returns the FAQ entries in display order.
func (s *FAQService) Items() []domain.FAQItem {
	return faqItems
}

// Toggle flips the expanded state of one entry and reports the new state.
// Out-of-range indexes are rejected.
func (s *FAQService) Toggle(index int) (bool, error) {
	if index < 0 || index >= len(faqItems) {
		return false, &domain.ErrNotFound{Resource: "faq item", ID: fmt.Sprint(index)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open[index] {
		delete(s.open, index)
		return false, nil
	}
	s.open[index] = true
	return true, nil
}

// Open returns the expanded entry indexes in ascending order.
func (s *FAQService) Open() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, len(s.open))
	for i := range s.open {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
