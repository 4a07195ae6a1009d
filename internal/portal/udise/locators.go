// File: internal/portal/udise/locators.go
package udise

import (
	"fmt"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

func byID(sel string) schemas.Locator {
	return schemas.Locator{Strategy: schemas.ByID, Selector: sel}
}

func byCSS(sel string) schemas.Locator {
	return schemas.Locator{Strategy: schemas.ByCSS, Selector: sel}
}

func byXPath(sel string) schemas.Locator {
	return schemas.Locator{Strategy: schemas.ByXPath, Selector: sel}
}

// Student login page.
var (
	locUsername        = byCSS(".form-control")
	locPassword        = byID("password-field")
	locCaptcha         = byID("captcha")
	locLoginSubmit     = byID("submit-btn")
	locLoginAlert      = byXPath("//div[@role='alert']/div/span")
	locAcademicYear    = byXPath("//ul/li/div/div[2]/p")
	locSchoolInfoClose = byXPath("//div/div/div/div[3]/button")
	locLoggedInSchool  = byXPath("//label[contains(normalize-space(text()), 'School Name')]/following::span[1]")
)

// Student import module: menu navigation, lookup form, portal verdict
// and the admission form shown once a student is importable.
var (
	locMovementProgression = byXPath("//span[contains(normalize-space(text()), 'Student Movement and Progression')]/ancestor::button")
	locImportModule        = byXPath(`//*[@id="flush-collapseOne2"]/div/ul/li[2]/span`)
	locImportWithinState   = byXPath("//ul/li[1]/div/button")

	locStudentPEN = byID("mat-input-0")
	locStudentDOB = byID("mat-input-1")
	locImportGo   = byXPath("//div[@class='col-lg-8']/ul/li[3]/button")

	locDOBMismatch   = byXPath("//div[@role='dialog']/h2")
	locDOBMismatchOK = byXPath("//div[@class='swal2-actions']/button[1]")
	// The portal colors the status container green when the student can
	// be imported and red when another school still holds them.
	locStatusImportable    = byXPath("//*[contains(@class, 'greenBack')]")
	locStatusHeldElsewhere = byXPath("//*[contains(@class, 'redBack')]")
	locCurrentSchool       = byXPath("//span[contains(normalize-space(text()), 'School Name')]/following-sibling::span")

	locSelectClass   = byXPath("//ul[@class='existingSchool1']/li[1]/div/select")
	locSelectSection = byXPath("//ul[@class='existingSchool1']/li[2]/div/ul/li[1]/select")
	locDOA           = byXPath("//label[contains(text(), 'Date of Admission')]/following::input[contains(@placeholder, 'DD/MM')][1]")

	locImportSubmit  = byXPath("//ul[@class='existingSchool1']/li[4]/button")
	locImportConfirm = byXPath("//div[@class='swal2-actions']/button[3]")
	locImportOK      = byXPath("//div[@class='swal2-actions']/button[1]")
	locImportSuccess = byXPath("//h2[contains(@class, 'swal2-title') and contains(normalize-space(text()), 'Student successfully Imported')]")
)

// Get PEN & DOB search dialog, used to recover a missing PEN from the
// student's Aadhaar number and year of birth.
var (
	locSearchOpen    = byXPath("//button[contains(normalize-space(text()), 'Get PEN')]")
	locAadhaarNo     = byXPath("//input[contains(@placeholder, 'Aadhaar')]")
	locYearOfBirth   = byXPath("//input[contains(@placeholder, 'Year of Birth')]")
	locSearchSubmit  = byXPath("//button[contains(normalize-space(text()), 'Search')]")
	locSearchPEN     = byXPath("//label[contains(normalize-space(text()), 'PEN')]/following-sibling::span")
	locSearchDOB     = byXPath("//label[contains(normalize-space(text()), 'Date of Birth')]/following-sibling::span")
	locSearchError   = byXPath("//div[@role='dialog']//h2[contains(@class, 'swal2-title')]")
	locSearchErrorOK = byXPath("//div[@class='swal2-actions']/button[1]")
	locSearchClose   = byXPath("//button[contains(@class, 'btn-close')]")
)

// Release request management: the in-state menu path, the PEN + DOB
// details form and the request submission dialog.
var (
	locReleaseManagement  = byXPath("//span[contains(normalize-space(text()), 'Release Request Management')]/ancestor::li")
	locReleaseWithinState = byXPath("//h5[contains(normalize-space(text()), 'Within State')]/following-sibling::div/button")
	locReleaseGenerate    = byXPath("//*[contains(normalize-space(text()), 'Generate Student Release Request')]")

	locReleasePEN        = byXPath("//input[@placeholder='Enter PEN']")
	locReleaseDOB        = byXPath("//label[contains(normalize-space(.), 'Date of Birth')]/following-sibling::div//input[@placeholder='DD/MM/YYYY']")
	locReleaseGetDetails = byXPath("//button[contains(normalize-space(text()), 'Get Details')]")

	locReleaseStudentName = byXPath("//label[contains(normalize-space(text()), 'Student Name')]/following-sibling::span")
	locReleaseClass       = byXPath("//label[contains(normalize-space(text()), 'Class')]/following-sibling::select")
	locReleaseSection     = byXPath("//label[contains(normalize-space(text()), 'Section')]/following-sibling::select")
	locReleaseDOA         = byXPath("//label[contains(text(), 'Date of Admission')]/following::input[contains(@placeholder, 'DD/MM')][1]")
	locReleaseRemark      = byXPath("//label[contains(normalize-space(text()), 'Remark')]/following-sibling::select")

	locReleaseSubmit = byXPath("//button[contains(normalize-space(text()), 'Generate')]")
	locReleaseStatus = byXPath("//div[@role='dialog']/h2")
	locReleaseError  = byXPath("//div[@role='dialog']//h2[contains(@class, 'swal2-title')]")
	locReleaseOK     = byXPath("//button[contains(normalize-space(text()), 'Okay')]")
)

// Class / Section Shift page: class filter, the paged student table and
// the shift dialog.
var (
	locSectionShift     = byXPath("//span[contains(normalize-space(text()), 'Class / Section Shift')]/ancestor::li")
	locShiftSelectClass = byXPath("//label[contains(normalize-space(text()), 'Class')]/following-sibling::select")
	locShiftGo          = byXPath("//button[contains(normalize-space(text()), 'Go')]")
	locShiftCount       = byXPath("//div[contains(@class, 'dataTables_info')]")
	locShiftNextPage    = byXPath("//a[contains(normalize-space(text()), 'Next')]")
	locShiftNewSection  = byXPath("//div[@role='dialog']//select")
	locShiftConfirm     = byXPath("//div[@role='dialog']//button[contains(normalize-space(text()), 'Confirm')]")
	locShiftMessage     = byXPath("//h2[contains(@class, 'swal2-title')]")
	locShiftOK          = byXPath("//div[@class='swal2-actions']/button[1]")
)

// Row locators are keyed by the student's PEN because the table renders
// one row per student.
func locShiftRowSection(pen string) schemas.Locator {
	return byXPath(fmt.Sprintf("//tr[td[contains(normalize-space(text()), '%s')]]/td[last()-1]", pen))
}

func locShiftRowEdit(pen string) schemas.Locator {
	return byXPath(fmt.Sprintf("//tr[td[contains(normalize-space(text()), '%s')]]//button", pen))
}
