// Package client is a typed Go client for the storefront API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/services"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// SetToken sets the bearer token sent with every request. An empty token
// makes requests anonymous.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, body, out)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ----- auth -----

func (c *Client) Register(ctx context.Context, email, password string) (*services.UserInfo, error) {
	var info services.UserInfo
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": password}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*services.UserInfo, error) {
	var info services.UserInfo
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Profile returns the identity of the current token. Token is left empty.
func (c *Client) Profile(ctx context.Context) (*services.UserInfo, error) {
	var info services.UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ----- catalog -----

func (c *Client) Products(ctx context.Context, keyword string) ([]models.Product, error) {
	path := "/api/products"
	if keyword != "" {
		path += "?keyword=" + url.QueryEscape(keyword)
	}
	var products []models.Product
	err := c.do(ctx, http.MethodGet, path, nil, &products)
	return products, err
}

func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AddReview(ctx context.Context, productID string, rating int, comment string) (*models.Product, error) {
	var p models.Product
	in := map[string]interface{}{"rating": rating, "comment": comment}
	if err := c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(productID)+"/reviews", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ----- cart -----

type cartItemBody struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (c *Client) Cart(ctx context.Context) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := c.do(ctx, http.MethodGet, "/api/users/cart", nil, &lines)
	return lines, err
}

func (c *Client) AddToCart(ctx context.Context, productID string, qty int) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := c.do(ctx, http.MethodPost, "/api/users/cart", cartItemBody{ProductID: productID, Qty: qty}, &lines)
	return lines, err
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := c.do(ctx, http.MethodDelete, "/api/users/cart/"+url.PathEscape(productID), nil, &lines)
	return lines, err
}

func (c *Client) MergeCart(ctx context.Context, items []models.CartItem) ([]models.CartLine, error) {
	body := struct {
		Items []cartItemBody `json:"items"`
	}{Items: make([]cartItemBody, len(items))}
	for i, it := range items {
		body.Items[i] = cartItemBody{ProductID: it.Product.Hex(), Qty: it.Qty}
	}
	var lines []models.CartLine
	err := c.do(ctx, http.MethodPost, "/api/users/cart/merge", body, &lines)
	return lines, err
}

// ----- wishlist -----

type wishlistBody struct {
	ProductID string `json:"productId"`
}

func (c *Client) Wishlist(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	err := c.do(ctx, http.MethodGet, "/api/users/wishlist", nil, &list)
	return list, err
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) ([]models.Product, error) {
	var list []models.Product
	err := c.do(ctx, http.MethodPost, "/api/users/wishlist", wishlistBody{ProductID: productID}, &list)
	return list, err
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) ([]models.Product, error) {
	var list []models.Product
	err := c.do(ctx, http.MethodDelete, "/api/users/wishlist/"+url.PathEscape(productID), nil, &list)
	return list, err
}

// ToggleWishlist reports whether the product was added.
func (c *Client) ToggleWishlist(ctx context.Context, productID string) ([]models.Product, bool, error) {
	var out struct {
		Added    bool             `json:"added"`
		Wishlist []models.Product `json:"wishlist"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/wishlist/toggle", wishlistBody{ProductID: productID}, &out); err != nil {
		return nil, false, err
	}
	return out.Wishlist, out.Added, nil
}

// ----- orders -----

func (c *Client) Checkout(ctx context.Context) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders)
	return orders, err
}

func (c *Client) Order(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) HasPurchased(ctx context.Context, productID string) (bool, error) {
	var out struct {
		HasPurchased bool `json:"hasPurchased"`
	}
	err := c.do(ctx, http.MethodGet, "/api/orders/has-purchased/"+url.PathEscape(productID), nil, &out)
	return out.HasPurchased, err
}

// ----- admin -----

// ProductForm is the multipart payload of product create and update. Zero
// pointer fields are not sent.
type ProductForm struct {
	Name          *string
	Description   *string
	Category      *string
	Price         *float64
	StockQuantity *int
	ImageName     string
	Image         io.Reader
}

func (f ProductForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]*string{"name": f.Name, "description": f.Description, "category": f.Category}
	for k, v := range fields {
		if v == nil {
			continue
		}
		if err := mw.WriteField(k, *v); err != nil {
			return nil, "", err
		}
	}
	if f.Price != nil {
		if err := mw.WriteField("price", strconv.FormatFloat(*f.Price, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	if f.StockQuantity != nil {
		if err := mw.WriteField("stockQuantity", strconv.Itoa(*f.StockQuantity)); err != nil {
			return nil, "", err
		}
	}
	if f.Image != nil {
		fw, err := mw.CreateFormFile("image", f.ImageName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, f.Image); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) CreateProduct(ctx context.Context, f ProductForm) (*models.Product, error) {
	return c.productForm(ctx, http.MethodPost, "/api/admin/products", f)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, f ProductForm) (*models.Product, error) {
	return c.productForm(ctx, http.MethodPut, "/api/admin/products/"+url.PathEscape(id), f)
}

func (c *Client) productForm(ctx context.Context, method, path string, f ProductForm) (*models.Product, error) {
	body, contentType, err := f.encode()
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := c.send(ctx, method, path, contentType, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/products/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &users)
	return users, err
}

func (c *Client) User(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id, email string, isAdmin bool) (*services.UserInfo, error) {
	var info services.UserInfo
	in := map[string]interface{}{"email": email, "isAdmin": isAdmin}
	if err := c.do(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(id), in, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil)
}
