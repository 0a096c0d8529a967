package factories

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"

	"github.com/chrisdamba/bagsim/internal/models"
)

var (
	bakeryKeywords = []string{"bakery", "bread", "donut", "krispy", "dunkin", "cinnabon", "greggs", "panera"}
	cafeKeywords   = []string{"coffee", "starbucks", "cafe", "costa", "pret", "tim hortons", "caribou"}
)

// InferBusinessType guesses a store's category from its name.
func InferBusinessType(name string) string {
	lower := strings.ToLower(name)
	for _, k := range bakeryKeywords {
		if strings.Contains(lower, k) {
			return models.CategoryBakery
		}
	}
	for _, k := range cafeKeywords {
		if strings.Contains(lower, k) {
			return models.CategoryCafe
		}
	}
	return models.CategoryRestaurant
}

// DefaultRestaurants is the built-in Cairo catalogue used when no store file
// is given.
func DefaultRestaurants() []*models.Restaurant {
	type row struct {
		id       int
		name     string
		branch   string
		bags     int
		rating   float64
		price    float64
		lon, lat float64
		category string
	}
	rows := []row{
		{1, "Krispy Kreme", "Zamalek", 10, 4.8, 80.0, 31.22, 30.05, models.CategoryBakery},
		{2, "TBS Pizza", "New Cairo", 10, 4.2, 150.0, 31.25, 30.08, models.CategoryRestaurant},
		{3, "Starbucks", "Zamalek", 15, 4.5, 100.0, 31.23, 30.06, models.CategoryCafe},
		{4, "Paul Bakery", "New Cairo", 12, 4.6, 90.0, 31.26, 30.09, models.CategoryBakery},
		{5, "Costa Coffee", "Zamalek", 8, 4.3, 85.0, 31.24, 30.07, models.CategoryCafe},
		{6, "Greggs", "New Cairo", 20, 4.0, 70.0, 31.27, 30.10, models.CategoryBakery},
		{7, "Pizza Hut", "Zamalek", 14, 4.1, 140.0, 31.21, 30.04, models.CategoryRestaurant},
		{8, "Pret A Manger", "New Cairo", 18, 4.4, 95.0, 31.28, 30.11, models.CategoryCafe},
		{9, "Subway", "Zamalek", 16, 3.9, 110.0, 31.20, 30.03, models.CategoryRestaurant},
		{10, "Tim Hortons", "New Cairo", 10, 4.2, 80.0, 31.29, 30.12, models.CategoryCafe},
		{11, "Dunkin Donuts", "Zamalek", 12, 4.3, 75.0, 31.19, 30.02, models.CategoryBakery},
		{12, "Domino's Pizza", "New Cairo", 15, 4.0, 130.0, 31.30, 30.13, models.CategoryRestaurant},
		{13, "Cinnabon", "Zamalek", 9, 4.4, 85.0, 31.18, 30.01, models.CategoryBakery},
		{14, "Caribou Coffee", "New Cairo", 11, 4.1, 90.0, 31.31, 30.14, models.CategoryCafe},
		{15, "Panera Bread", "Zamalek", 13, 4.2, 95.0, 31.17, 30.00, models.CategoryRestaurant},
	}

	out := make([]*models.Restaurant, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.NewRestaurant(r.id, r.name, r.branch, r.category, r.bags, r.rating, r.price,
			models.Location{Lon: r.lon, Lat: r.lat}))
	}
	return out
}

// RestaurantFactory generates synthetic stores inside the customer area.
type RestaurantFactory struct {
	rng  *rand.Rand
	fake faker.Faker
}

func NewRestaurantFactory(rng *rand.Rand) *RestaurantFactory {
	return &RestaurantFactory{rng: rng, fake: faker.NewWithSeed(rng)}
}

func (rf *RestaurantFactory) CreateRestaurant(id int) *models.Restaurant {
	categories := models.DefaultCategories
	category := categories[rf.rng.Intn(len(categories))]

	name := rf.fake.Company().Name()
	switch category {
	case models.CategoryBakery:
		name = fmt.Sprintf("%s Bakery", rf.fake.Person().LastName())
	case models.CategoryCafe:
		name = fmt.Sprintf("%s Cafe", rf.fake.Person().LastName())
	}

	location := models.Location{
		Lon: minCustomerLon + rf.rng.Float64()*(maxCustomerLon-minCustomerLon),
		Lat: minCustomerLat + rf.rng.Float64()*(maxCustomerLat-minCustomerLat),
	}
	bags := 6 + rf.rng.Intn(15)
	rating := 3.5 + float64(rf.rng.Intn(16))/10.0
	price := 60.0 + float64(rf.rng.Intn(19))*5.0

	return models.NewRestaurant(id, name, rf.fake.Address().City(), category, bags, rating, price, location)
}

// CreateRestaurants generates n stores with ids starting at firstID.
func (rf *RestaurantFactory) CreateRestaurants(firstID, n int) []*models.Restaurant {
	out := make([]*models.Restaurant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rf.CreateRestaurant(firstID+i))
	}
	return out
}
