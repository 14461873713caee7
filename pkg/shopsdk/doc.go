/*
Package shopsdk is a Go client for the storefront HTTP API.

The server keeps the session in an HttpOnly cookie, so a Client carries a
cookie jar and every call after Login is made as the logged-in user until
Logout clears it:

	client, err := shopsdk.NewClient("http://localhost:5001")
	if err != nil {
		return err
	}

	if _, err := client.SignUp(ctx, shopsdk.SignUpRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
	}); err != nil {
		return err
	}

	user, err := client.Login(ctx, "ada@example.com", "correct horse")

Catalog reads are public. Creating products and categories requires an admin
session; products are sent as multipart forms with the image attached:

	product, err := client.CreateProduct(ctx, shopsdk.ProductRequest{
		Name:       "Mug",
		Price:      "12.50",
		CategoryID: category.ID,
		Image:      shopsdk.Image{Filename: "mug.png", ContentType: "image/png", Data: png},
	})

Any non-success response is returned as *APIError carrying the HTTP status
and the server's error code:

	var apiErr *shopsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == shopsdk.CodeInvalidCategory {
		// ...
	}
*/
package shopsdk
