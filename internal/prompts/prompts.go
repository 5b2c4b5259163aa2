// Package prompts holds the instruction templates that steer the completion
// model for each report type. The catalog is immutable static configuration:
// templates are package-level constants exposed through a total lookup.
package prompts

import "github.com/posinsight/posinsight/pkg/models"

// SystemPrompt is the default assistant instruction used for free-form chat
// and for any unrecognized report type.
const SystemPrompt = `You are an AI assistant specialized in Point-of-Sale (POS) business analytics and reporting.
Your role is to help business owners and managers understand their sales data through intelligent analysis and report generation.

Key Responsibilities:
1. Analyze POS transaction data to identify trends, patterns, and insights
2. Generate clear, actionable business reports
3. Answer questions about sales performance, inventory, and customer behavior
4. Provide data-driven recommendations for business improvement
5. Explain financial metrics and business metrics in accessible language

Guidelines:
- Always base your analysis on the provided POS data
- Use professional business language but remain accessible
- Provide specific numbers and percentages when available
- Organize information clearly with summaries and key takeaways
- Flag any data inconsistencies or anomalies
- Suggest follow-up questions for deeper analysis

If you don't have the data needed to answer a question, clearly state what additional information would be helpful.`

const dailyReportPrompt = `Generate a comprehensive daily sales report based on today's POS data. Include:

1. **Sales Summary**
   - Total revenue
   - Number of transactions
   - Average transaction value
   - Peak sales times

2. **Top Performers**
   - Top 5 products by revenue
   - Top 5 products by quantity sold
   - Top payment methods

3. **Department Performance**
   - Revenue by department
   - Transaction count by department

4. **Key Metrics**
   - Discount percentage
   - Tax collected

5. **Alerts & Observations**
   - Any unusual patterns
   - Notable changes from average
   - Recommendations for follow-up

Format the output clearly with headers and bullet points. Provide specific figures with units.`

const weeklyReportPrompt = `Generate a detailed weekly sales analysis. Include:

1. **Week Overview**
   - Total revenue
   - Total transactions
   - Daily average

2. **Daily Breakdown**
   - Sales by day of week
   - Best and worst performing days
   - Trends throughout the week

3. **Product Analysis**
   - Top products by revenue and by volume
   - Slowest moving items

4. **Category Performance**
   - Revenue by category
   - High-margin vs high-volume categories

5. **Payment & Transactions**
   - Payment method breakdown
   - Average transaction value trend

6. **Strategic Insights**
   - Week's performance assessment
   - Key opportunities
   - Recommendations for next week

Provide detailed analysis with specific numbers and percentages.`

const monthlyReportPrompt = `Generate a comprehensive monthly sales report. Include:

1. **Monthly Performance**
   - Total revenue
   - Total transactions
   - Average transaction value
   - Daily average revenue

2. **Revenue Breakdown**
   - By week
   - By category

3. **Top Products**
   - Top products by revenue and by quantity

4. **Operational Metrics**
   - Discounts given (% of revenue)
   - Tax collected
   - Payment method mix

5. **Trends & Patterns**
   - Day-of-week patterns
   - Time-of-day patterns

6. **Recommendations**
   - Strategic opportunities
   - Areas for improvement
   - Inventory adjustments needed

Provide an executive summary at the top, then detailed analysis.`

const trendAnalysisPrompt = `Analyze the sales trends in the provided data. Focus on:

1. **Time-Based Trends**
   - Daily, weekly, and seasonal patterns

2. **Product Trends**
   - Growing products
   - Declining products

3. **Customer Trends**
   - Spending trends
   - Segment shifts

4. **Financial Trends**
   - Revenue per transaction
   - Discount trends
   - Payment method shifts

Provide insights with specific data points and recommendations.`

const anomalyDetectionPrompt = `Examine the data for unusual patterns or anomalies:

1. **Price Anomalies**
   - Unusually high/low transactions
   - Outlier products

2. **Volume Anomalies**
   - Unusual spikes or drops
   - Day/time anomalies

3. **Customer Anomalies**
   - Unusual customer behavior
   - Large transactions

4. **Pattern Breaks**
   - Deviations from historical patterns
   - Unexpected category changes

Flag potential issues and suggest actions.`

const comparativeAnalysisPrompt = `Compare the current period with the previous period. Analyze:

1. **Revenue Comparison**
   - Total revenue change (%)
   - Average transaction value change
   - Transaction count change

2. **Product Comparison**
   - Top products changes
   - Volume vs revenue changes

3. **Operational Changes**
   - Payment method shifts
   - Discount percentage changes
   - Category mix changes

Highlight the most significant changes and explain their implications.`

const customerSegmentationPrompt = `Based on the POS data, segment customers and provide insights:

1. **Segment Identification**
   - By spending level (high/medium/low value)
   - By purchase frequency

2. **Segment Characteristics**
   - Average spend per segment
   - Preferred products and payment methods

3. **Segment Recommendations**
   - Marketing strategy per segment
   - Customer retention focus

Provide specific numbers and percentages for each segment.`

const inventoryAnalysisPrompt = `Analyze inventory performance based on sales data:

1. **Fast Movers**
   - Top products by volume
   - Replenishment recommendations

2. **Slow Movers**
   - Products with lowest volume
   - Potential clearance strategies

3. **Dead Stock**
   - Items not sold in the period
   - Clearance recommendations

Provide clear recommendations for inventory management.`

const quickSummaryPrompt = `Provide a quick summary of the sales period including:

1. **Quick Numbers**
   - Total revenue
   - Number of transactions
   - Average transaction value

2. **Top Sales**
   - Top 3 selling items
   - Best category

3. **Notable Metrics**
   - Peak sales time
   - Payment method used most

4. **Key Insight**
   - Most important finding
   - One key recommendation

Keep it concise and scannable.`

// DataValidationPrompt asks the model to sanity-check the supplied data
// before producing analysis. It is not wired to a report type; callers can
// prepend it when they want the model to flag data quality issues.
const DataValidationPrompt = `Before generating any report, verify:

1. Data completeness: Are all required fields present?
2. Data consistency: Are there obvious data entry errors?
3. Data quality: Are values reasonable?
4. Date range: Is the date range appropriate for the analysis?
5. Sample size: Is there sufficient data for reliable analysis?

If issues are found:
- Flag them clearly
- Note impact on report reliability
- Provide analysis with caveats if proceeding`

var byType = map[models.ReportType]string{
	models.ReportDaily:                dailyReportPrompt,
	models.ReportWeekly:               weeklyReportPrompt,
	models.ReportMonthly:              monthlyReportPrompt,
	models.ReportTrendAnalysis:        trendAnalysisPrompt,
	models.ReportAnomalyDetection:     anomalyDetectionPrompt,
	models.ReportComparative:          comparativeAnalysisPrompt,
	models.ReportCustomerSegmentation: customerSegmentationPrompt,
	models.ReportInventory:            inventoryAnalysisPrompt,
	models.ReportQuickSummary:         quickSummaryPrompt,
}

// ForReportType returns the instruction template for the given report type.
// Unknown or empty types fall back to SystemPrompt, so the lookup is total.
func ForReportType(rt models.ReportType) string {
	if p, ok := byType[rt]; ok {
		return p
	}
	return SystemPrompt
}
