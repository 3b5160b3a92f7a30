package credentials

// Routes of the screens
const LOGIN_URL = "/"
const REGISTER_URL = "/register"

// Suffix of the submission tracker key, one outstanding submit per browser and form
const REGISTER_FLOW = "register"

const CSS_CREDENTIALS = "/public/css/credentials.css"
