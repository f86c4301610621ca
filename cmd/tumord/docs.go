package main

// General API documentation for swaggo. Run `swag init` to regenerate docs.
//
// @title           tumord API
// @version         1.0
// @description     HTTP API for brain-MRI tumor classification.
//
// @contact.name   tumord maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
