package dto

// RegisterForm is the form posted to /register.
// Length rules are enforced by the usecase so that the page can show a specific message.
type RegisterForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// FormView is the data rendered by login.tmpl and register.tmpl.
type FormView struct {
	Username string
	Error    string
}
