package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/player --output domain/player --outpkg playermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/event --output domain/event --outpkg eventmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name CatalogRepository --dir ../domain/survey --output domain/survey --outpkg surveymock --filename catalog_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SessionStore --dir ../domain/survey --output domain/survey --outpkg surveymock --filename session_store_mock.go
