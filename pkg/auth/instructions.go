package auth

import "fmt"

// ShowCookieExtractionGuide prints how to pull the session cookies out
// of a logged-in browser.
func ShowCookieExtractionGuide() {
	fmt.Println("Instagram session cookies are required to render carousel pages.")
	fmt.Println()
	fmt.Println("1. Log in to https://www.instagram.com in your browser")
	fmt.Println("2. Open Developer Tools (F12) and go to the Application/Storage tab")
	fmt.Println("3. Expand Cookies and select https://www.instagram.com")
	fmt.Println("4. Copy the values of these cookies:")
	fmt.Println()
	fmt.Println("   sessionid   long string containing %3A and %2C")
	fmt.Println("   csrftoken   32-character string")
	fmt.Println()
	fmt.Println("Copy the full value after the = sign, without quotes or semicolons.")
	fmt.Println("These cookies grant full account access; never share them.")
	fmt.Println("They expire periodically and will need refreshing.")
}
