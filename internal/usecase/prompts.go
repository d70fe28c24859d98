package usecase

import "fmt"

// identifyPrompt asks the model for a flat, parseable item list
const identifyPrompt = "Analyze this food image. Identify each distinct food item and ESTIMATE its portion size " +
	"(e.g., '1 cup', '200g', '1 large slice'). " +
	"Return ONLY a list in this format: Item Name (Portion Size). " +
	"Example: 'Cheeseburger (1 item), French Fries (medium portion), Coke (330ml)'."

const synthesisPromptTemplate = `You are an expert AI Dietitian and Nutritionist with advanced spatial reasoning capabilities.
Your task is to analyze the provided image and context to produce a highly accurate nutritional assessment.

**CONTEXT FROM WEB SEARCH (Use to ground your specific calculations):**
%s

**INSTRUCTIONS - THINK STEP-BY-STEP:**
1. **Scene & Scale Analysis**:
   - Identify any reference objects (utensils, plates, table grain) to establish scale.
   - Estimate the plate diameter if visible (standard is ~10-12 inches).
   - Account for 3D depth and stacking of food items.

2. **Item Identification & Segmentation**:
   - List every distinct edible item.
   - Differentiate between sauces, garnishes, and main components.

3. **Volumetric Estimation**:
   - For each item, estimate its volume (e.g., "cup", "cubic inches", "tablespoons").
   - Convert this volume to Weight (grams) using standard density factors (e.g., 1 cup rice ~= 158g).
   - *Explicitly state your logic for these conversions in the description.*

4. **Nutritional Calculation**:
   - Use the provided Web Search Context for "per 100g" values.
   - Multiply by your estimated weight.
   - Sum up totals.

5. **Final Output Generation**:
   - Return the result in specific JSON format.

**REQUIRED JSON OUTPUT FORMAT**:
{
    "overall_description": "A detailed 2-3 sentence summary of the meal and portion sizes.",
    "items": [
        {
            "name": "Food Name (e.g. Grilled Chicken)",
            "estimated_portion": "e.g. 6 oz (approx 170g)",
            "confidence": 0.95,
            "description": "Visual reasoning: Covers 1/3 of 10-inch plate, thickness approx 1 inch.",
            "nutrition": {
                "calories": "Calculated Value",
                "protein": "...",
                "carbs": "...",
                "fats": "...",
                "vitamins": ["Vit A", "B12"]
            },
            "search_insights": { "source": "Source for [Search Term]" }
        }
    ],
    "total_calories_estimate": "Sum numeric string (e.g. '850 kcal')",
    "health_score": 8,
    "dietary_warnings": ["Allergen 1", "High Sodium"]
}

RETURN ONLY RAW JSON. NO MARKDOWN.`

// synthesisPrompt injects the aggregated per-item search context
func synthesisPrompt(searchContext string) string {
	return fmt.Sprintf(synthesisPromptTemplate, searchContext)
}
