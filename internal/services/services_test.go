package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/auth"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"
	"collect-and-cruise/internal/store/memstore"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUploader struct {
	uploads []string
	err     error
}

func (f *fakeUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.uploads = append(f.uploads, filename+":"+string(b))
	return "https://img.example/" + filename, nil
}

// conflictingUsers fails the next n versioned writes with ErrConflict.
type conflictingUsers struct {
	store.Users
	n int
}

func (c *conflictingUsers) SaveCart(ctx context.Context, id primitive.ObjectID, version int64, items []models.CartItem) error {
	if c.n > 0 {
		c.n--
		return store.ErrConflict
	}
	return c.Users.SaveCart(ctx, id, version, items)
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	st       store.Store
	images   *fakeUploader
	auth     *AuthService
	cart     *CartService
	wishlist *WishlistService
	orders   *OrderService
	catalog  *CatalogService
	admin    *AdminService

	user     *models.User
	sierra   *models.Product
	countach *models.Product
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.st = memstore.New()
	s.images = &fakeUploader{}
	s.auth = NewAuthService(s.st.Users, auth.NewTokens("test-secret", 0))
	s.cart = NewCartService(s.st.Users, s.st.Products)
	s.wishlist = NewWishlistService(s.st.Users, s.st.Products)
	s.orders = NewOrderService(s.st.Users, s.st.Products, s.st.Orders)
	s.catalog = NewCatalogService(s.st.Products, s.st.Orders, s.images)
	s.admin = NewAdminService(s.st.Users)

	info, err := s.auth.Register(s.ctx, "Buyer@Example.com", "hunter22")
	s.Require().NoError(err)
	id, _ := primitive.ObjectIDFromHex(info.ID)
	s.user, err = s.st.Users.FindByID(s.ctx, id)
	s.Require().NoError(err)

	s.sierra = &models.Product{Name: "Ford Sierra Cosworth", Category: models.CategoryMainline, Price: 249, StockQuantity: 10}
	s.countach = &models.Product{Name: "Lamborghini Countach", Category: models.CategoryPremium, Price: 499.99, StockQuantity: 5}
	s.Require().NoError(s.st.Products.Create(s.ctx, s.sierra))
	s.Require().NoError(s.st.Products.Create(s.ctx, s.countach))
}

func (s *ServiceSuite) requireStatus(err error, status int) {
	s.Require().Error(err)
	s.Equal(status, apperr.StatusOf(err), err.Error())
}

// ----- auth -----

func (s *ServiceSuite) TestRegister_DuplicateEmail() {
	_, err := s.auth.Register(s.ctx, "buyer@example.com", "x")
	s.requireStatus(err, http.StatusBadRequest)
}

func (s *ServiceSuite) TestRegister_StoresHashAndLowercasesEmail() {
	s.Equal("buyer@example.com", s.user.Email)
	s.NotEqual("hunter22", s.user.Password)
	s.True(auth.CheckPassword(s.user.Password, "hunter22"))
}

func (s *ServiceSuite) TestLogin_FailuresAreIndistinguishable() {
	_, wrongPass := s.auth.Login(s.ctx, "buyer@example.com", "nope")
	_, unknown := s.auth.Login(s.ctx, "ghost@example.com", "hunter22")

	s.requireStatus(wrongPass, http.StatusUnauthorized)
	s.requireStatus(unknown, http.StatusUnauthorized)
	s.Equal(wrongPass.Error(), unknown.Error())
}

func (s *ServiceSuite) TestLogin_IssuesUsableToken() {
	info, err := s.auth.Login(s.ctx, "BUYER@example.com", "hunter22")
	s.Require().NoError(err)

	u, err := s.auth.Authenticate(s.ctx, info.Token)
	s.Require().NoError(err)
	s.Equal(s.user.ID, u.ID)
	s.Empty(u.Password)
}

func (s *ServiceSuite) TestAuthenticate_Rejects() {
	_, err := s.auth.Authenticate(s.ctx, "")
	s.requireStatus(err, http.StatusUnauthorized)

	_, err = s.auth.Authenticate(s.ctx, "garbage")
	s.requireStatus(err, http.StatusUnauthorized)

	tok, _ := auth.NewTokens("test-secret", 0).Issue(primitive.NewObjectID().Hex())
	_, err = s.auth.Authenticate(s.ctx, tok)
	s.requireStatus(err, http.StatusUnauthorized)
}

// ----- cart -----

func (s *ServiceSuite) TestAddToCart_OverwritesQuantity() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 2)
	s.Require().NoError(err)
	lines, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 5)
	s.Require().NoError(err)

	s.Require().Len(lines, 1)
	s.Equal(5, lines[0].Qty)
	s.Equal("Ford Sierra Cosworth", lines[0].Product.Name)
	s.Equal(249.0, lines[0].Product.Price)
}

func (s *ServiceSuite) TestAddToCart_Validation() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 0)
	s.requireStatus(err, http.StatusBadRequest)

	_, err = s.cart.Add(s.ctx, s.user.ID, primitive.NewObjectID().Hex(), 1)
	s.requireStatus(err, http.StatusNotFound)

	_, err = s.cart.Add(s.ctx, s.user.ID, "not-an-id", 1)
	s.requireStatus(err, http.StatusNotFound)
}

func (s *ServiceSuite) TestRemoveFromCart_MissingIsNoop() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 2)
	s.Require().NoError(err)

	lines, err := s.cart.Remove(s.ctx, s.user.ID, s.countach.ID.Hex())
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal(2, lines[0].Qty)

	lines, err = s.cart.Remove(s.ctx, s.user.ID, s.sierra.ID.Hex())
	s.Require().NoError(err)
	s.Empty(lines)
}

func (s *ServiceSuite) TestMerge_Example() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 2)
	s.Require().NoError(err)

	lines, err := s.cart.Merge(s.ctx, s.user.ID, []models.CartItem{
		{Product: s.sierra.ID, Qty: 5},
		{Product: s.countach.ID, Qty: 1},
	})
	s.Require().NoError(err)

	s.Require().Len(lines, 2)
	s.Equal(s.sierra.ID, lines[0].Product.ID)
	s.Equal(5, lines[0].Qty)
	s.Equal(s.countach.ID, lines[1].Product.ID)
	s.Equal(1, lines[1].Qty)
}

func (s *ServiceSuite) TestMerge_DropsUnknownProducts() {
	lines, err := s.cart.Merge(s.ctx, s.user.ID, []models.CartItem{
		{Product: primitive.NewObjectID(), Qty: 3},
		{Product: s.countach.ID, Qty: 1},
	})
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal(s.countach.ID, lines[0].Product.ID)

	u, _ := s.st.Users.FindByID(s.ctx, s.user.ID)
	s.Len(u.Cart, 1)
}

func (s *ServiceSuite) TestMerge_RejectsBadQuantity() {
	_, err := s.cart.Merge(s.ctx, s.user.ID, []models.CartItem{{Product: s.sierra.ID, Qty: -1}})
	s.requireStatus(err, http.StatusBadRequest)
}

func (s *ServiceSuite) TestCart_RetriesOnConflict() {
	users := &conflictingUsers{Users: s.st.Users, n: 2}
	svc := NewCartService(users, s.st.Products)

	lines, err := svc.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.Require().NoError(err)
	s.Len(lines, 1)
}

func (s *ServiceSuite) TestCart_GivesUpAfterRepeatedConflicts() {
	users := &conflictingUsers{Users: s.st.Users, n: maxAttempts}
	svc := NewCartService(users, s.st.Products)

	_, err := svc.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.requireStatus(err, http.StatusConflict)
}

// ----- wishlist -----

func (s *ServiceSuite) TestWishlistToggle_TwiceRestores() {
	list, added, err := s.wishlist.Toggle(s.ctx, s.user.ID, s.sierra.ID.Hex())
	s.Require().NoError(err)
	s.True(added)
	s.Len(list, 1)

	list, added, err = s.wishlist.Toggle(s.ctx, s.user.ID, s.sierra.ID.Hex())
	s.Require().NoError(err)
	s.False(added)
	s.Empty(list)
}

func (s *ServiceSuite) TestWishlist_AddIsIdempotentAndRemove() {
	_, err := s.wishlist.Add(s.ctx, s.user.ID, s.countach.ID.Hex())
	s.Require().NoError(err)
	list, err := s.wishlist.Add(s.ctx, s.user.ID, s.countach.ID.Hex())
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Equal("Lamborghini Countach", list[0].Name)

	list, err = s.wishlist.Remove(s.ctx, s.user.ID, s.countach.ID.Hex())
	s.Require().NoError(err)
	s.Empty(list)

	_, err = s.wishlist.Add(s.ctx, s.user.ID, primitive.NewObjectID().Hex())
	s.requireStatus(err, http.StatusNotFound)
}

// ----- orders -----

func (s *ServiceSuite) TestCheckout_EmptyCart() {
	_, err := s.orders.Checkout(s.ctx, s.user.ID)
	s.requireStatus(err, http.StatusBadRequest)
}

func (s *ServiceSuite) TestCheckout_TotalsAndClearsCart() {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.orders.now = func() time.Time { return fixed }
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 2)
	s.Require().NoError(err)
	_, err = s.cart.Add(s.ctx, s.user.ID, s.countach.ID.Hex(), 3)
	s.Require().NoError(err)

	order, err := s.orders.Checkout(s.ctx, s.user.ID)
	s.Require().NoError(err)

	s.Equal(2*249+3*499.99, order.TotalPrice)
	s.True(order.IsPaid)
	s.Equal(fixed, *order.PaidAt)
	s.Len(order.OrderItems, 2)

	lines, err := s.cart.Get(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Empty(lines)

	p, _ := s.st.Products.FindByID(s.ctx, s.sierra.ID)
	s.Equal(10, p.StockQuantity, "checkout must not touch stock")
}

func (s *ServiceSuite) TestCheckout_SnapshotIsACopy() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.Require().NoError(err)
	order, err := s.orders.Checkout(s.ctx, s.user.ID)
	s.Require().NoError(err)

	_, err = s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 9)
	s.Require().NoError(err)

	got, err := s.orders.Get(s.ctx, s.user.ID, order.ID.Hex())
	s.Require().NoError(err)
	s.Equal(1, got.OrderItems[0].Qty)
}

func (s *ServiceSuite) TestCheckout_AllProductsDeleted() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.Require().NoError(err)
	s.Require().NoError(s.st.Products.Delete(s.ctx, s.sierra.ID))

	_, err = s.orders.Checkout(s.ctx, s.user.ID)
	s.requireStatus(err, http.StatusBadRequest)
	s.Equal("Your cart is empty", err.(*apperr.Error).Message)

	u, _ := s.st.Users.FindByID(s.ctx, s.user.ID)
	s.Empty(u.Cart)
}

func (s *ServiceSuite) TestCheckout_SkipsDeletedProducts() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 2)
	s.Require().NoError(err)
	_, err = s.cart.Add(s.ctx, s.user.ID, s.countach.ID.Hex(), 1)
	s.Require().NoError(err)
	s.Require().NoError(s.st.Products.Delete(s.ctx, s.sierra.ID))

	order, err := s.orders.Checkout(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal([]models.CartItem{{Product: s.countach.ID, Qty: 1}}, order.OrderItems)
	s.Equal(499.99, order.TotalPrice)

	u, _ := s.st.Users.FindByID(s.ctx, s.user.ID)
	s.Empty(u.Cart)
}

func (s *ServiceSuite) TestGetCart_PrunesDeletedProducts() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.Require().NoError(err)
	_, err = s.cart.Add(s.ctx, s.user.ID, s.countach.ID.Hex(), 3)
	s.Require().NoError(err)
	s.Require().NoError(s.st.Products.Delete(s.ctx, s.sierra.ID))

	lines, err := s.cart.Get(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal(s.countach.ID, lines[0].Product.ID)

	u, _ := s.st.Users.FindByID(s.ctx, s.user.ID)
	s.Equal([]models.CartItem{{Product: s.countach.ID, Qty: 3}}, u.Cart)
}

func (s *ServiceSuite) TestCheckout_OrderStandsWhenCartClearConflicts() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 2)
	s.Require().NoError(err)

	users := &conflictingUsers{Users: s.st.Users, n: 10}
	svc := NewOrderService(users, s.st.Products, s.st.Orders)

	order, err := svc.Checkout(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(498.0, order.TotalPrice)

	orders, err := s.orders.List(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(orders, 1)
}

func (s *ServiceSuite) TestHasPurchased() {
	ok, err := s.orders.HasPurchased(s.ctx, s.user.ID, s.sierra.ID.Hex())
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.Require().NoError(err)
	_, err = s.orders.Checkout(s.ctx, s.user.ID)
	s.Require().NoError(err)

	ok, err = s.orders.HasPurchased(s.ctx, s.user.ID, s.sierra.ID.Hex())
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.orders.HasPurchased(s.ctx, s.user.ID, s.countach.ID.Hex())
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestOrders_OwnOnly() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.Require().NoError(err)
	order, err := s.orders.Checkout(s.ctx, s.user.ID)
	s.Require().NoError(err)

	_, err = s.orders.Get(s.ctx, primitive.NewObjectID(), order.ID.Hex())
	s.requireStatus(err, http.StatusNotFound)

	list, err := s.orders.List(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *ServiceSuite) TestTotal_DecimalRounding() {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	total := Total(
		[]models.CartItem{{Product: a, Qty: 3}, {Product: b, Qty: 1}},
		map[primitive.ObjectID]float64{a: 0.1, b: 0.2},
	)
	s.Equal(0.5, total)
}

// ----- catalog -----

func str(v string) *string    { return &v }
func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func validInput() ProductInput {
	return ProductInput{
		Name:          str("Nissan Skyline GT-R"),
		Description:   str("R34 in Bayside Blue"),
		Category:      str("Exclusive"),
		Price:         f64(899),
		StockQuantity: intp(3),
	}
}

func (s *ServiceSuite) TestCreateProduct_UploadsImage() {
	p, err := s.catalog.Create(s.ctx, validInput(), &Image{Filename: "gtr.jpg", Body: strings.NewReader("jpeg")})
	s.Require().NoError(err)

	s.Equal("https://img.example/gtr.jpg", p.ImageURL)
	s.Equal([]string{"gtr.jpg:jpeg"}, s.images.uploads)
	s.Equal(models.CategoryExclusive, p.Category)
}

func (s *ServiceSuite) TestCreateProduct_Validation() {
	_, err := s.catalog.Create(s.ctx, validInput(), nil)
	s.requireStatus(err, http.StatusBadRequest)

	in := validInput()
	in.Category = str("Toy")
	_, err = s.catalog.Create(s.ctx, in, &Image{Filename: "x.jpg", Body: strings.NewReader("")})
	s.requireStatus(err, http.StatusBadRequest)

	in = validInput()
	in.Price = f64(-1)
	_, err = s.catalog.Create(s.ctx, in, &Image{Filename: "x.jpg", Body: strings.NewReader("")})
	s.requireStatus(err, http.StatusBadRequest)

	in = validInput()
	in.StockQuantity = nil
	_, err = s.catalog.Create(s.ctx, in, &Image{Filename: "x.jpg", Body: strings.NewReader("")})
	s.requireStatus(err, http.StatusBadRequest)
}

func (s *ServiceSuite) TestCreateProduct_UploadFailure() {
	s.images.err = errors.New("host down")
	_, err := s.catalog.Create(s.ctx, validInput(), &Image{Filename: "x.jpg", Body: strings.NewReader("")})
	s.requireStatus(err, http.StatusInternalServerError)
}

func (s *ServiceSuite) TestUpdateAndDeleteProduct() {
	p, err := s.catalog.Update(s.ctx, s.sierra.ID.Hex(), ProductInput{Price: f64(199)}, nil)
	s.Require().NoError(err)
	s.Equal(199.0, p.Price)
	s.Equal("Ford Sierra Cosworth", p.Name)

	s.Require().NoError(s.catalog.Delete(s.ctx, s.sierra.ID.Hex()))
	s.requireStatus(s.catalog.Delete(s.ctx, s.sierra.ID.Hex()), http.StatusNotFound)
	_, err = s.catalog.Get(s.ctx, s.sierra.ID.Hex())
	s.requireStatus(err, http.StatusNotFound)
}

func (s *ServiceSuite) TestListProducts_Keyword() {
	list, err := s.catalog.List(s.ctx, "COUNTACH")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(s.countach.ID, list[0].ID)
}

func (s *ServiceSuite) TestAddReview_RequiresPurchase() {
	_, err := s.catalog.AddReview(s.ctx, s.user, s.sierra.ID.Hex(), 5, "Great casting")
	s.requireStatus(err, http.StatusForbidden)
}

func (s *ServiceSuite) TestAddReview_OncePerUserAndAggregates() {
	_, err := s.cart.Add(s.ctx, s.user.ID, s.sierra.ID.Hex(), 1)
	s.Require().NoError(err)
	_, err = s.orders.Checkout(s.ctx, s.user.ID)
	s.Require().NoError(err)

	p, err := s.catalog.AddReview(s.ctx, s.user, s.sierra.ID.Hex(), 4, "Nice wheels")
	s.Require().NoError(err)
	s.Equal(1, p.NumReviews)
	s.Equal(4.0, p.Rating)
	s.Equal("buyer", p.Reviews[0].Name)

	_, err = s.catalog.AddReview(s.ctx, s.user, s.sierra.ID.Hex(), 5, "Again")
	s.requireStatus(err, http.StatusBadRequest)

	_, err = s.catalog.AddReview(s.ctx, s.user, s.sierra.ID.Hex(), 6, "Too high")
	s.requireStatus(err, http.StatusBadRequest)
}

// ----- admin -----

func (s *ServiceSuite) TestAdmin_CannotDeleteAdmin() {
	admin, err := ResetAdmin(s.ctx, s.st.Users)
	s.Require().NoError(err)

	s.requireStatus(s.admin.DeleteUser(s.ctx, admin.ID.Hex()), http.StatusBadRequest)
	s.Require().NoError(s.admin.DeleteUser(s.ctx, s.user.ID.Hex()))
	_, err = s.admin.GetUser(s.ctx, s.user.ID.Hex())
	s.requireStatus(err, http.StatusNotFound)
}

func (s *ServiceSuite) TestAdmin_UpdateUser() {
	u, err := s.admin.UpdateUser(s.ctx, s.user.ID.Hex(), "", true)
	s.Require().NoError(err)
	s.True(u.IsAdmin)
	s.Equal("buyer@example.com", u.Email)

	_, err = s.auth.Login(s.ctx, "buyer@example.com", "hunter22")
	s.NoError(err, "password hash must survive an admin update")
}

// ----- seed -----

func (s *ServiceSuite) TestImportSampleData() {
	s.Require().NoError(ImportSampleData(s.ctx, s.st))

	users, err := s.admin.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 3)

	products, err := s.catalog.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(products, 2)

	info, err := s.auth.Login(s.ctx, SeedAdminEmail, SeedPassword)
	s.Require().NoError(err)
	s.True(info.IsAdmin)
}
