package loader

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/bagsim/internal/models"
)

func testLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return logrus.NewEntry(logger), hook
}

const storesCSV = `Store_ID,Store_Name,Branch,Average_Bags_At_9AM,Average_Overall_Rating,Price,Longitude,Latitude
1,"Krispy Kreme, Downtown",Zamalek,10,4.8,80,31.22,30.05
2,Starbucks,New Cairo,15,4.5,100,31.23,30.06
3,Koshary Abou Tarek,Downtown,7,4.1,60,31.24,30.04
4,Broken,Downtown,x,4.1,60,31.24,30.04
`

func TestReadRestaurants(t *testing.T) {
	logger, hook := testLogger()

	restaurants, err := ReadRestaurants(strings.NewReader(storesCSV), logger)
	require.NoError(t, err)
	require.Len(t, restaurants, 3)

	assert.Equal(t, "Krispy Kreme, Downtown", restaurants[0].Name)
	assert.Equal(t, models.CategoryBakery, restaurants[0].BusinessType)
	assert.Equal(t, models.CategoryCafe, restaurants[1].BusinessType)
	assert.Equal(t, models.CategoryRestaurant, restaurants[2].BusinessType)
	assert.Equal(t, 15, restaurants[1].EstimatedBags)
	assert.InDelta(t, 4.5, restaurants[1].Rating(), 1e-9)
	assert.Equal(t, models.DefaultMaxBagsPerCustomer, restaurants[2].MaxBagsPerCustomer)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "unparseable row should be reported")
}

func TestReadRestaurantsExplicitType(t *testing.T) {
	logger, _ := testLogger()
	in := "store_id,store_name,branch,average_bags_at_9am,average_overall_rating,price,longitude,latitude,type\n" +
		"1,Starbucks,Zamalek,5,4.0,50,31.2,30.0,Bakery\n"

	restaurants, err := ReadRestaurants(strings.NewReader(in), logger)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, models.CategoryBakery, restaurants[0].BusinessType)
}

func TestReadRestaurantsMissingColumns(t *testing.T) {
	logger, _ := testLogger()

	_, err := ReadRestaurants(strings.NewReader("store_id,store_name\n1,A\n"), logger)
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "price")
}

func TestReadRestaurantsValidation(t *testing.T) {
	header := "store_id,store_name,branch,average_bags_at_9am,average_overall_rating,price,longitude,latitude\n"
	tests := []struct {
		name string
		row  string
	}{
		{"rating above range", "1,A,B,5,5.5,50,31.2,30.0"},
		{"rating below range", "1,A,B,5,0.5,50,31.2,30.0"},
		{"zero price", "1,A,B,5,4.0,0,31.2,30.0"},
		{"negative bags", "1,A,B,-1,4.0,50,31.2,30.0"},
		{"nan coordinate", "1,A,B,5,4.0,50,NaN,30.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testLogger()
			_, err := ReadRestaurants(strings.NewReader(header+tt.row+"\n"), logger)
			require.ErrorIs(t, err, models.ErrInvalidRestaurant)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestReadRestaurantsDuplicateID(t *testing.T) {
	logger, _ := testLogger()
	in := "store_id,store_name,branch,average_bags_at_9am,average_overall_rating,price,longitude,latitude\n" +
		"1,A,B,5,4.0,50,31.2,30.0\n" +
		"1,C,D,5,4.0,50,31.2,30.0\n"

	_, err := ReadRestaurants(strings.NewReader(in), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestReadCustomersFull(t *testing.T) {
	logger, _ := testLogger()
	in := "CustomerID,Longitude,Latitude,Name,Segment,WTP,Rating_W,Price_W,Novelty_W,Loyalty,Leaving_Threshold,store_1_valuation,Store_ID_2\n" +
		"7,31.25,30.05,Mona,premium,200,1.6,0.4,0.9,0.5,4.2,3.5,1.25\n"

	customers, err := ReadCustomers(strings.NewReader(in), rand.New(rand.NewSource(1)), logger)
	require.NoError(t, err)
	require.Len(t, customers, 1)

	c := customers[0]
	assert.Equal(t, 7, c.ID)
	assert.Equal(t, "Mona", c.Name)
	assert.Equal(t, models.SegmentPremium, c.Segment)
	assert.Equal(t, 200.0, c.WillingnessToPay)
	assert.Equal(t, models.Weights{Rating: 1.6, Price: 0.4, Novelty: 0.9}, c.Weights)
	assert.Equal(t, 0.5, c.Loyalty)
	assert.Equal(t, 0.5, c.InitialLoyalty)
	assert.Equal(t, 4.2, c.LeavingThreshold)
	assert.Equal(t, map[int]float64{1: 3.5, 2: 1.25}, c.StoreValuations)
}

func TestReadCustomersDefaults(t *testing.T) {
	logger, _ := testLogger()
	in := "customer_id,lon,lat,segment\n1,31.25,30.05,budget\n2,31.26,30.06,\n"

	customers, err := ReadCustomers(strings.NewReader(in), rand.New(rand.NewSource(3)), logger)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	c := customers[0]
	assert.Equal(t, "Customer_1", c.Name)
	assert.Equal(t, models.DefaultLoyalty, c.Loyalty)
	assert.GreaterOrEqual(t, c.WillingnessToPay, 80.0)
	assert.Less(t, c.WillingnessToPay, 120.0)
	assert.GreaterOrEqual(t, c.Weights.Price, 1.5)
	assert.GreaterOrEqual(t, c.Weights.Novelty, 0.2)
	assert.Less(t, c.Weights.Novelty, 0.5)
	assert.GreaterOrEqual(t, c.LeavingThreshold, 1.5)
	assert.Less(t, c.LeavingThreshold, 2.5)

	assert.True(t, customers[1].Segment.Valid())
}

func TestReadCustomersDeterministic(t *testing.T) {
	in := "customer_id,lon,lat\n1,31.25,30.05\n2,31.26,30.06\n"
	logger, _ := testLogger()

	a, err := ReadCustomers(strings.NewReader(in), rand.New(rand.NewSource(9)), logger)
	require.NoError(t, err)
	b, err := ReadCustomers(strings.NewReader(in), rand.New(rand.NewSource(9)), logger)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReadCustomersUnknownSegment(t *testing.T) {
	logger, _ := testLogger()
	in := "customer_id,lon,lat,segment\n1,31.25,30.05,vip\n"

	_, err := ReadCustomers(strings.NewReader(in), rand.New(rand.NewSource(1)), logger)
	require.ErrorIs(t, err, models.ErrUnknownSegment)
}

func TestReadCustomersSkipsBadRows(t *testing.T) {
	logger, hook := testLogger()
	in := "customer_id,lon,lat,wtp\n1,31.25,30.05,100\n2,31.26\nabc,31.2,30.0,100\n3,31.27,30.07,cheap\n"

	customers, err := ReadCustomers(strings.NewReader(in), rand.New(rand.NewSource(1)), logger)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, 1, customers[0].ID)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 3, warnings)
}

func TestReadCustomersRejectsInvalidValues(t *testing.T) {
	logger, _ := testLogger()

	_, err := ReadCustomers(strings.NewReader("customer_id,lon,lat,wtp\n1,31.25,30.05,-5\n"),
		rand.New(rand.NewSource(1)), logger)
	require.Error(t, err)

	_, err = ReadCustomers(strings.NewReader("customer_id,lon,lat,loyalty\n1,31.25,30.05,1.5\n"),
		rand.New(rand.NewSource(1)), logger)
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stores.csv")
	require.NoError(t, os.WriteFile(path, []byte(storesCSV), 0o644))

	logger, _ := testLogger()
	restaurants, err := LoadRestaurants(path, logger)
	require.NoError(t, err)
	assert.Len(t, restaurants, 3)

	_, err = LoadRestaurants(filepath.Join(dir, "missing.csv"), logger)
	require.Error(t, err)
}
